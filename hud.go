package slippy

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudWidth and hudHeight fit four lines of the ebitenutil debug font.
const (
	hudWidth  = 220
	hudHeight = 68
)

// hudText formats the debug overlay for the current view.
func (m *Map) hudText(fps float64) string {
	c := m.view.Center
	return fmt.Sprintf("zoom: %d\ncenter: %.5f, %.5f\nres: %.2f m/px\nFPS: %.1f",
		m.view.Zoom, c.Lat, c.Lon, Resolution(c.Lat, m.view.Zoom), fps)
}

// drawHUD draws the debug overlay in the top-left corner of screen.
func (m *Map) drawHUD(screen *ebiten.Image) {
	if m.hudImg == nil {
		m.hudImg = ebiten.NewImage(hudWidth, hudHeight)
	}
	m.hudImg.Clear()
	// Semi-transparent background for readability.
	m.hudImg.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(m.hudImg, m.hudText(ebiten.ActualFPS()))
	screen.DrawImage(m.hudImg, nil)
}
