package slippy

import (
	"image"
	"math"

	"github.com/paulmach/orb/maptile"
)

// PlannedTile is one cell of a TileGrid: the wrapped key to fetch and where
// its top-left corner lands on the raster.
type PlannedTile struct {
	Key      TileKey
	Col, Row int         // grid cell, 0-based from the top-left
	Dest     image.Point // destination of the tile's top-left pixel
}

// TileGrid is the set of tiles that fully covers a viewport.
type TileGrid struct {
	// StartX and StartY are the unwrapped tile indices of the top-left cell.
	// They may be negative or exceed the tile count when the view has been
	// panned across the antimeridian or past a pole.
	StartX, StartY int

	// Cols and Rows are the grid dimensions in tiles.
	Cols, Rows int

	// OffsetX and OffsetY are the pixels of the top-left tile hidden past the
	// viewport's left and top edges, in [0, TileSize).
	OffsetX, OffsetY int

	// Tiles lists every cell in row-major order.
	Tiles []PlannedTile
}

// Bounds returns the raster rectangle covered by the grid's tiles.
func (g TileGrid) Bounds() image.Rectangle {
	if len(g.Tiles) == 0 {
		return image.Rectangle{}
	}
	return image.Rect(-g.OffsetX, -g.OffsetY,
		g.Cols*TileSize-g.OffsetX, g.Rows*TileSize-g.OffsetY)
}

// PlanTiles computes the tiles needed to cover v. An empty viewport yields
// an empty grid.
func PlanTiles(v Viewport) TileGrid {
	if v.Empty() {
		return TileGrid{}
	}
	zoom := ClampZoom(v.Zoom)
	origin := viewOrigin(v.Center, zoom, v.Width, v.Height)

	startX, offX := splitTile(origin.X)
	startY, offY := splitTile(origin.Y)

	// +offset accounts for the partial tile hidden past the top-left edge.
	cols := int(math.Ceil(float64(v.Width+offX) / TileSize))
	rows := int(math.Ceil(float64(v.Height+offY) / TileSize))

	n := NumTiles(zoom)
	g := TileGrid{
		StartX: startX, StartY: startY,
		Cols: cols, Rows: rows,
		OffsetX: offX, OffsetY: offY,
		Tiles: make([]PlannedTile, 0, cols*rows),
	}
	for row := 0; row < rows; row++ {
		y := wrapIndex(startY+row, n)
		for col := 0; col < cols; col++ {
			x := wrapIndex(startX+col, n)
			g.Tiles = append(g.Tiles, PlannedTile{
				Key:  maptile.New(uint32(x), uint32(y), maptile.Zoom(zoom)),
				Col:  col,
				Row:  row,
				Dest: image.Pt(col*TileSize-offX, row*TileSize-offY),
			})
		}
	}
	return g
}

// splitTile splits a tile-space coordinate into its floor tile index and the
// pixel offset into that tile. The offset is always in [0, TileSize), also
// for negative coordinates.
func splitTile(t float64) (index, offsetPx int) {
	f := math.Floor(t)
	index, offsetPx = int(f), int((t-f)*TileSize)
	if offsetPx >= TileSize {
		// t-f rounded up to 1 for t just below an integer.
		index, offsetPx = index+1, 0
	}
	return index, offsetPx
}

// wrapIndex returns i modulo n in [0, n), unlike Go's truncating %.
func wrapIndex(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}
