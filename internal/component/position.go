package component

import (
	"babilonia/internal/ecs"
	"math"
)

const CPosition ecs.ComponentType = 1

// Position is a point in world pixels. Tile (0,0) spans [0,TileSize) on both axes.
type Position struct {
	X, Y float64
}

func (Position) Type() ecs.ComponentType { return CPosition }

// Dist returns the Euclidean distance between p and o.
func (p Position) Dist(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Add returns p offset by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}
