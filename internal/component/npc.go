package component

import "babilonia/internal/ecs"

const CNPC ecs.ComponentType = 5

// NPC is the identity of a character the player can talk to.
type NPC struct {
	ID      string   // stable id, also the dialogue service's character id
	Name    string   // display name
	Opening string   // first message sent to the dialogue service
	Lines   []string // offline dialogue, used when no service is configured
}

func (NPC) Type() ecs.ComponentType { return CNPC }
