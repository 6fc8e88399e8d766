package component

import "babilonia/internal/ecs"

const CBody ecs.ComponentType = 7

// Body is an axis-aligned collision box centred on the entity's Position.
type Body struct {
	HalfW, HalfH float64
}

func (Body) Type() ecs.ComponentType { return CBody }

// DefaultBody is the footprint used for the player and every character.
var DefaultBody = Body{HalfW: 12, HalfH: 12}

// Overlaps reports whether b centred on p intersects o centred on q.
func (b Body) Overlaps(p Position, o Body, q Position) bool {
	return p.X-b.HalfW < q.X+o.HalfW && p.X+b.HalfW > q.X-o.HalfW &&
		p.Y-b.HalfH < q.Y+o.HalfH && p.Y+b.HalfH > q.Y-o.HalfH
}
