package slippy

import (
	"image/color"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileSize is the edge length of a map tile in pixels.
const TileSize = 256

// Zoom limits. Every write to a viewport zoom is clamped to this range.
const (
	MinZoom = 3
	MaxZoom = 19
)

// PlaceholderWhite is the default fill for tiles the cache cannot serve yet.
var PlaceholderWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// WorldPoint is a geographic position in degrees (WGS84). It is a value type;
// arithmetic returns new points.
type WorldPoint struct {
	Lon, Lat float64
}

// Zero is the world origin: the intersection of the equator and the prime
// meridian.
var Zero = WorldPoint{}

// Add returns p + q component-wise.
func (p WorldPoint) Add(q WorldPoint) WorldPoint {
	return WorldPoint{Lon: p.Lon + q.Lon, Lat: p.Lat + q.Lat}
}

// Sub returns p - q component-wise.
func (p WorldPoint) Sub(q WorldPoint) WorldPoint {
	return WorldPoint{Lon: p.Lon - q.Lon, Lat: p.Lat - q.Lat}
}

// Point returns p as an orb.Point ([lon, lat]).
func (p WorldPoint) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// WorldPointFromOrb converts an orb.Point ([lon, lat]) to a WorldPoint.
func WorldPointFromOrb(p orb.Point) WorldPoint {
	return WorldPoint{Lon: p.Lon(), Lat: p.Lat()}
}

// TilePoint is a fractional position in tile units at some zoom level.
type TilePoint struct {
	X, Y float64
}

// Add returns p + q.
func (p TilePoint) Add(q TilePoint) TilePoint { return TilePoint{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p TilePoint) Sub(q TilePoint) TilePoint { return TilePoint{p.X - q.X, p.Y - q.Y} }

// ScreenPoint is a pixel offset. Unless stated otherwise it is relative to
// the viewport's top-left corner.
type ScreenPoint struct {
	X, Y float64
}

// Add returns p + q.
func (p ScreenPoint) Add(q ScreenPoint) ScreenPoint { return ScreenPoint{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p ScreenPoint) Sub(q ScreenPoint) ScreenPoint { return ScreenPoint{p.X - q.X, p.Y - q.Y} }

// TileKey identifies one tile image. X and Y are always wrapped into
// [0, 2^Z).
type TileKey = maptile.Tile

// Viewport is the visible window onto the map: its pixel size, the world
// point shown at its centre, and the zoom level.
type Viewport struct {
	Width, Height int
	Center        WorldPoint
	Zoom          int
}

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// ClampZoom restricts z to [MinZoom, MaxZoom].
func ClampZoom(z int) int {
	return min(max(z, MinZoom), MaxZoom)
}

// NumTiles returns the number of tiles per axis at the given zoom.
func NumTiles(zoom int) int {
	return 1 << uint(zoom)
}
