package slippy

import "github.com/hajimehoshi/ebiten/v2"

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Debug enables the HUD and per-pass render statistics.
	Debug bool
}

// game adapts a Map to ebiten.Game. The window size drives the viewport.
type game struct {
	m *Map
}

func (g *game) Update() error {
	g.m.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.m.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.m.SetViewportSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens a resizable window showing m and blocks until it is closed.
// The map is closed on return.
func Run(m *Map, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "slippy"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1024
	}
	if cfg.Height <= 0 {
		cfg.Height = 768
	}
	defer m.Close()

	m.SetDebugMode(cfg.Debug)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(&game{m: m})
}
