// Package slippy renders a pannable, zoomable slippy map for [Ebitengine].
//
// Slippy composites 256x256 raster tiles from a host-supplied [TileCache]
// onto an offscreen [RasterSurface] and keeps it in sync with pointer-driven
// pan and zoom. It provides the coordinate projection between world (lon/lat),
// tile and screen space, the tile grid planner, a cancellable render
// orchestrator, and the drag and cursor-anchored wheel-zoom interaction.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and game
// loop for you:
//
//	cache := tilecache.New(tilecache.Config{}, tilecache.NewHTTPFetcher(tilecache.HTTPConfig{}))
//	m := slippy.NewMap(cache, slippy.MapConfig{
//		Center: slippy.WorldPoint{Lon: -0.1275, Lat: 51.5072},
//		Zoom:   12,
//	})
//	slippy.Run(m, slippy.RunConfig{Title: "London", Width: 1024, Height: 768})
//
// For full control, implement [ebiten.Game] yourself and call [Map.Update],
// [Map.Draw] and [Map.SetViewportSize] directly:
//
//	type Game struct{ m *slippy.Map }
//
//	func (g *Game) Update() error        { g.m.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.m.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) {
//		g.m.SetViewportSize(w, h)
//		return w, h
//	}
//
// # Rendering
//
// Every change of centre, zoom or size, and every finished tile download,
// invalidates the view. Invalidation starts a new render pass and cancels
// the one in flight. Passes take turns writing to the raster: a pass holds
// the surface until all of its tiles have settled, and a cancelled pass
// stops drawing at its next tile. Tiles the cache cannot serve yet are drawn
// as a placeholder fill and replaced when their download finishes.
//
// A cancelled pass may leave some of its tiles on the raster. The pass that
// superseded it repaints the whole grid, so the surface converges.
//
// # Interaction
//
// Dragging pans the map so the point under the pointer follows it. The
// wheel zooms one level per notch, keeping the point under the cursor fixed.
// Zoom is always clamped to [MinZoom, MaxZoom]. [Map.FlyTo] animates the
// centre with a [gween] tween.
//
// Input can be injected for tests with [Map.InjectDrag], [Map.InjectWheel]
// and friends, or scripted with [LoadTestScript].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package slippy
