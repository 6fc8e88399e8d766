// Package ecs is the small entity store behind the city: the player and
// the characters are entities, their state lives in value components.
package ecs

// EntityID identifies an entity. IDs grow with creation order.
type EntityID uint64

// NilEntity is never handed out.
const NilEntity EntityID = 0

// ComponentType keys a component store.
type ComponentType uint8

// Component is implemented by every value stored in a World.
type Component interface {
	Type() ComponentType
}
