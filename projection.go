package slippy

import (
	"math"

	"github.com/paulmach/orb/maptile"
)

// earthCircumference is the equatorial circumference in metres used by the
// spherical Mercator projection.
const earthCircumference = 40075016.686

// WorldToTile maps a world point to fractional tile coordinates at zoom.
// Latitudes beyond the Mercator limit (about ±85.0511°) project past the
// top or bottom edge of the map, so any tile position round-trips through
// TileToWorld.
func WorldToTile(p WorldPoint, zoom int) TilePoint {
	f := maptile.Fraction(p.Point(), maptile.Zoom(zoom))
	// Fraction pins Y at the poles, and one row short of the edge in the
	// south. Y follows the unclamped inverse of TileToWorld instead.
	n := float64(NumTiles(zoom))
	lat := p.Lat * math.Pi / 180
	y := (1 - math.Asinh(math.Tan(lat))/math.Pi) / 2 * n
	return TilePoint{X: f[0], Y: y}
}

// TileToWorld is the inverse of WorldToTile.
func TileToWorld(t TilePoint, zoom int) WorldPoint {
	n := float64(NumTiles(zoom))
	lon := t.X/n*360.0 - 180.0
	lat := math.Atan(math.Sinh(math.Pi*(1-2*t.Y/n))) * 180.0 / math.Pi
	return WorldPoint{Lon: lon, Lat: lat}
}

// TileToScreen scales tile units to pixels.
func TileToScreen(t TilePoint) ScreenPoint {
	return ScreenPoint{X: t.X * TileSize, Y: t.Y * TileSize}
}

// ScreenToTile scales pixels to tile units.
func ScreenToTile(s ScreenPoint) TilePoint {
	return TilePoint{X: s.X / TileSize, Y: s.Y / TileSize}
}

// viewOrigin returns the tile-space position of the viewport's top-left
// corner.
func viewOrigin(center WorldPoint, zoom, width, height int) TilePoint {
	c := WorldToTile(center, zoom)
	return TilePoint{
		X: c.X - float64(width)/(2*TileSize),
		Y: c.Y - float64(height)/(2*TileSize),
	}
}

// WorldToScreen places p in pixels relative to the top-left corner of a
// width x height viewport centred on center.
func WorldToScreen(p, center WorldPoint, zoom, width, height int) ScreenPoint {
	local := WorldToTile(p, zoom).Sub(viewOrigin(center, zoom, width, height))
	return TileToScreen(local)
}

// ScreenToWorld converts a viewport pixel position back to a world point.
func ScreenToWorld(s ScreenPoint, center WorldPoint, zoom, width, height int) WorldPoint {
	t := viewOrigin(center, zoom, width, height).Add(ScreenToTile(s))
	return TileToWorld(t, zoom)
}

// WorldToScreen places p on the viewport.
func (v Viewport) WorldToScreen(p WorldPoint) ScreenPoint {
	return WorldToScreen(p, v.Center, v.Zoom, v.Width, v.Height)
}

// ScreenToWorld returns the world point under viewport pixel s.
func (v Viewport) ScreenToWorld(s ScreenPoint) WorldPoint {
	return ScreenToWorld(s, v.Center, v.Zoom, v.Width, v.Height)
}

// Resolution returns the ground distance covered by one pixel, in metres,
// at the given latitude and zoom.
func Resolution(lat float64, zoom int) float64 {
	return earthCircumference * math.Cos(lat*math.Pi/180) / float64(TileSize*NumTiles(zoom))
}
