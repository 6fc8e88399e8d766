package component

import (
	"babilonia/internal/ecs"
	"time"
)

const CWander ecs.ComponentType = 4

// WanderTuning holds the per-character knobs of autonomous wandering.
// All distances are in world pixels, speeds in pixels per second.
type WanderTuning struct {
	RoamRadius            float64
	MoveSpeed             float64
	PauseChance           float64 // probability per decision tick
	DirectionChangeChance float64 // probability per decision tick
}

// Wander is the autonomous-movement state of one NPC. The spawn origin is
// fixed for the lifetime of the entity; the agent never leaves the disc of
// radius Tuning.RoamRadius around it.
type Wander struct {
	SpawnX, SpawnY float64
	Tuning         WanderTuning

	Committed   bool      // a walking direction has been chosen
	Dir         Direction // valid when Committed
	SinceDecide time.Duration
	PauseLeft   time.Duration
}

func (Wander) Type() ecs.ComponentType { return CWander }

// Spawn returns the spawn origin as a Position.
func (w Wander) Spawn() Position {
	return Position{X: w.SpawnX, Y: w.SpawnY}
}
