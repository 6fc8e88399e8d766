package component

import "babilonia/internal/ecs"

const CFacing ecs.ComponentType = 2

// Direction is one of the four cardinal facings. The names follow the sprite
// sheet convention: front looks down the screen, back looks up.
type Direction uint8

const (
	DirFront Direction = iota // +Y
	DirBack                   // -Y
	DirLeft                   // -X
	DirRight                  // +X
)

// Directions lists the cardinals in a fixed order for uniform sampling.
var Directions = [4]Direction{DirFront, DirBack, DirLeft, DirRight}

// Delta returns the unit vector for d.
func (d Direction) Delta() (float64, float64) {
	switch d {
	case DirFront:
		return 0, 1
	case DirBack:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case DirFront:
		return "front"
	case DirBack:
		return "back"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "unknown"
}

// ParseDirection maps a roster string to a Direction; unknown names face front.
func ParseDirection(s string) Direction {
	switch s {
	case "back":
		return DirBack
	case "left":
		return DirLeft
	case "right":
		return DirRight
	}
	return DirFront
}

// Facing is the direction an entity's glyph is oriented towards.
type Facing struct {
	Dir Direction
}

func (Facing) Type() ecs.ComponentType { return CFacing }
