package render

import "babilonia/internal/gamemap"

// Camera translates between world tiles and screen coordinates.
// Tile X is multiplied by 2 because emoji occupy 2 terminal columns.
type Camera struct {
	OffsetX    int
	OffsetY    int
	ViewWidth  int // in terminal columns
	ViewHeight int // in terminal rows
}

// NewCamera creates a camera centered on tile (cx, cy).
func NewCamera(cx, cy, viewW, viewH int) *Camera {
	c := &Camera{ViewWidth: viewW, ViewHeight: viewH}
	c.Center(cx, cy)
	return c
}

// Resize changes the viewport, keeping the current offsets.
func (c *Camera) Resize(viewW, viewH int) {
	c.ViewWidth, c.ViewHeight = viewW, viewH
}

// Center repositions the camera so that tile (cx, cy) is in the middle.
func (c *Camera) Center(cx, cy int) {
	// ViewWidth is in columns; each tile is 2 columns wide.
	c.OffsetX = cx - (c.ViewWidth/2)/2
	c.OffsetY = cy - c.ViewHeight/2
}

// CenterPixel centers the camera on the tile containing pixel (px, py).
func (c *Camera) CenterPixel(px, py float64) {
	c.Center(gamemap.TileAt(px, py))
}

// WorldToScreen converts tile (wx, wy) to screen (sx, sy).
// visible is false when the result falls outside the viewport.
func (c *Camera) WorldToScreen(wx, wy int) (sx, sy int, visible bool) {
	sx = (wx - c.OffsetX) * 2
	sy = wy - c.OffsetY
	visible = sx >= 0 && sx+1 < c.ViewWidth && sy >= 0 && sy < c.ViewHeight
	return
}

// PixelToScreen converts a world pixel position to the screen cell of its tile.
func (c *Camera) PixelToScreen(px, py float64) (sx, sy int, visible bool) {
	tx, ty := gamemap.TileAt(px, py)
	return c.WorldToScreen(tx, ty)
}

// ScreenToWorld converts screen (sx, sy) to tile coordinates.
func (c *Camera) ScreenToWorld(sx, sy int) (int, int) {
	return sx/2 + c.OffsetX, sy + c.OffsetY
}
