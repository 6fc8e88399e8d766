package gamemap

import "math"

// TileSize is the edge length of one tile in world pixels.
const TileSize = 32.0

// Marker is a named point placed on the map, used for spawn lookup.
// X and Y are world pixels at the centre of the marker's tile.
type Marker struct {
	Name string
	X, Y float64
}

// GameMap holds the tile grid and the named markers of the world.
type GameMap struct {
	Width, Height int
	Tiles         [][]Tile
	Markers       []Marker
}

// New creates a GameMap filled with walls.
func New(width, height int) *GameMap {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = MakeWall()
		}
	}
	return &GameMap{Width: width, Height: height, Tiles: tiles}
}

// InBounds reports whether (x, y) is within the map boundaries.
func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns a pointer to the tile at (x, y). Panics if out of bounds.
func (m *GameMap) At(x, y int) *Tile {
	return &m.Tiles[y][x]
}

// Set replaces the tile at (x, y).
func (m *GameMap) Set(x, y int, t Tile) {
	m.Tiles[y][x] = t
}

// IsWalkable returns true when (x, y) is in bounds and walkable.
func (m *GameMap) IsWalkable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.Tiles[y][x].Walkable
}

// PixelSize returns the world extent in pixels.
func (m *GameMap) PixelSize() (float64, float64) {
	return float64(m.Width) * TileSize, float64(m.Height) * TileSize
}

// TileAt converts a world pixel coordinate to the tile containing it.
func TileAt(px, py float64) (int, int) {
	return int(math.Floor(px / TileSize)), int(math.Floor(py / TileSize))
}

// TileCenter returns the world pixel coordinate of the centre of tile (x, y).
func TileCenter(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * TileSize, (float64(y) + 0.5) * TileSize
}

// BoxFree reports whether an axis-aligned box centred on (cx, cy) with the
// given half extents overlaps only walkable tiles.
func (m *GameMap) BoxFree(cx, cy, halfW, halfH float64) bool {
	// Shrink by a hair so a box resting exactly on a tile edge does not
	// count as overlapping the neighbour.
	const eps = 1e-6
	x0, y0 := TileAt(cx-halfW+eps, cy-halfH+eps)
	x1, y1 := TileAt(cx+halfW-eps, cy+halfH-eps)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !m.IsWalkable(x, y) {
				return false
			}
		}
	}
	return true
}

// AddMarker places a named marker at the centre of tile (x, y).
func (m *GameMap) AddMarker(name string, x, y int) {
	px, py := TileCenter(x, y)
	m.Markers = append(m.Markers, Marker{Name: name, X: px, Y: py})
}

// FindMarker returns the first marker with the given name.
func (m *GameMap) FindMarker(name string) (Marker, bool) {
	for _, mk := range m.Markers {
		if mk.Name == name {
			return mk, true
		}
	}
	return Marker{}, false
}
