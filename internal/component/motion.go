package component

import "babilonia/internal/ecs"

const CMotion ecs.ComponentType = 3

// MotionState is the coarse movement state shown by the renderer.
type MotionState uint8

const (
	MotionIdle MotionState = iota
	MotionWalking
	MotionPaused
)

func (m MotionState) String() string {
	switch m {
	case MotionWalking:
		return "walking"
	case MotionPaused:
		return "paused"
	}
	return "idle"
}

// Motion holds the movement state of the player or an NPC.
type Motion struct {
	State MotionState
}

func (Motion) Type() ecs.ComponentType { return CMotion }
