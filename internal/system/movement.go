package system

import (
	"math"
	"time"

	"babilonia/internal/component"
	"babilonia/internal/ecs"
	"babilonia/internal/gamemap"
)

// PlayerSpeed is the player's walking speed in pixels per second.
const PlayerSpeed = 175.0

// MoveResult describes the outcome of a TryMove call.
type MoveResult uint8

const (
	MoveOK      MoveResult = iota // position updated
	MoveBlocked                   // wall, water or out-of-bounds
	MoveBumped                    // overlapped a blocking entity
)

func (r MoveResult) String() string {
	switch r {
	case MoveOK:
		return "ok"
	case MoveBlocked:
		return "blocked"
	case MoveBumped:
		return "bumped"
	}
	return "unknown"
}

// bodyOf returns the entity's collision box, or DefaultBody when it has none.
func bodyOf(w *ecs.World, id ecs.EntityID) component.Body {
	if b, ok := ecs.Fetch[component.Body](w, id); ok {
		return b
	}
	return component.DefaultBody
}

// TryMove attempts to move entity id by (dx, dy) pixels on gmap.
// Returns the outcome and (if MoveBumped) the entity in the way.
func TryMove(w *ecs.World, gmap *gamemap.GameMap, id ecs.EntityID, dx, dy float64) (MoveResult, ecs.EntityID) {
	pos, ok := ecs.Fetch[component.Position](w, id)
	if !ok {
		return MoveBlocked, ecs.NilEntity
	}
	next := pos.Add(dx, dy)
	body := bodyOf(w, id)

	if !gmap.BoxFree(next.X, next.Y, body.HalfW, body.HalfH) {
		return MoveBlocked, ecs.NilEntity
	}
	if other, ok := blockerAt(w, id, body, pos, next); ok {
		return MoveBumped, other
	}

	w.Add(id, next)
	return MoveOK, ecs.NilEntity
}

// blockerAt returns the first blocking entity that body would overlap at next.
// Moves that separate two bodies already overlapping are allowed so that
// entities spawned on top of each other can walk apart.
func blockerAt(w *ecs.World, self ecs.EntityID, body component.Body, from, next component.Position) (ecs.EntityID, bool) {
	for _, other := range w.Query(component.CTagBlocking, component.CPosition) {
		if other == self {
			continue
		}
		otherPos, _ := ecs.Fetch[component.Position](w, other)
		otherBody := bodyOf(w, other)
		if !body.Overlaps(next, otherBody, otherPos) {
			continue
		}
		if next.Dist(otherPos) > from.Dist(otherPos) {
			continue
		}
		return other, true
	}
	return ecs.NilEntity, false
}

// Heading is the held-direction input for one frame; each axis is -1, 0 or 1.
type Heading struct {
	DX, DY int
}

// Zero reports whether no direction is held.
func (h Heading) Zero() bool { return h.DX == 0 && h.DY == 0 }

// MovePlayer advances the player along heading for dt, normalising diagonal
// movement so it is no faster than a straight line. Each axis is tried on
// its own so the player slides along walls.
func MovePlayer(w *ecs.World, gmap *gamemap.GameMap, id ecs.EntityID, h Heading, dt time.Duration) {
	if h.Zero() {
		w.Add(id, component.Motion{State: component.MotionIdle})
		return
	}
	step := PlayerSpeed * dt.Seconds()
	vx, vy := float64(h.DX), float64(h.DY)
	norm := math.Hypot(vx, vy)
	vx, vy = vx/norm*step, vy/norm*step

	moved := false
	if vx != 0 {
		if r, _ := TryMove(w, gmap, id, vx, 0); r == MoveOK {
			moved = true
		}
	}
	if vy != 0 {
		if r, _ := TryMove(w, gmap, id, 0, vy); r == MoveOK {
			moved = true
		}
	}

	// Horizontal input wins the facing, as with the walk animations.
	var dir component.Direction
	switch {
	case h.DX < 0:
		dir = component.DirLeft
	case h.DX > 0:
		dir = component.DirRight
	case h.DY < 0:
		dir = component.DirBack
	default:
		dir = component.DirFront
	}
	w.Add(id, component.Facing{Dir: dir})
	if moved {
		w.Add(id, component.Motion{State: component.MotionWalking})
	} else {
		w.Add(id, component.Motion{State: component.MotionIdle})
	}
}
