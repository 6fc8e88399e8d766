package component

import (
	"babilonia/internal/ecs"

	"github.com/gdamore/tcell/v2"
)

const CRenderable ecs.ComponentType = 6

// Draw layers. Within a layer, entities lower on the map are drawn last.
const (
	LayerCharacter = 5
	LayerPlayer    = 10
)

// Renderable is how an entity appears on the map: one emoji glyph, two
// cells wide.
type Renderable struct {
	Glyph string
	Color tcell.Color
	Layer int
}

func (Renderable) Type() ecs.ComponentType { return CRenderable }
