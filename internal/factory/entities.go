package factory

import (
	"errors"
	"fmt"

	"babilonia/assets"
	"babilonia/internal/component"
	"babilonia/internal/ecs"
	"babilonia/internal/gamemap"

	"github.com/gdamore/tcell/v2"
)

// ErrMissingSpawn is returned when the world has no marker for the player
// or for a roster character.
var ErrMissingSpawn = errors.New("missing spawn marker")

// NewPlayer creates the player entity at (x, y) pixels.
func NewPlayer(w *ecs.World, x, y float64) ecs.EntityID {
	id := w.CreateEntity()
	w.Add(id, component.Position{X: x, Y: y})
	w.Add(id, component.Facing{Dir: component.DirFront})
	w.Add(id, component.Motion{State: component.MotionIdle})
	w.Add(id, component.DefaultBody)
	w.Add(id, component.Renderable{
		Glyph: assets.GlyphPlayer,
		Color: tcell.ColorYellow,
		Layer: component.LayerPlayer,
	})
	w.Add(id, component.TagPlayer{})
	return id
}

// NewCharacter creates a wandering character spawned at (x, y) pixels.
func NewCharacter(w *ecs.World, c assets.Character, x, y float64, tuning component.WanderTuning) ecs.EntityID {
	id := w.CreateEntity()
	w.Add(id, component.Position{X: x, Y: y})
	w.Add(id, component.Facing{Dir: component.ParseDirection(c.Facing)})
	w.Add(id, component.Motion{State: component.MotionIdle})
	w.Add(id, component.Wander{SpawnX: x, SpawnY: y, Tuning: tuning})
	w.Add(id, component.NPC{ID: c.ID, Name: c.Name, Opening: c.Opening, Lines: c.Lines})
	w.Add(id, component.DefaultBody)
	w.Add(id, component.Renderable{
		Glyph: c.Glyph,
		Color: tcell.ColorWhite,
		Layer: component.LayerCharacter,
	})
	w.Add(id, component.TagBlocking{})
	return id
}

// Tuning returns the character's wander parameters: roster values, roster
// defaults for the ones left at zero, then any world override on top.
func Tuning(c assets.Character, o gamemap.TuningOverride) component.WanderTuning {
	t := component.WanderTuning{
		RoamRadius:            c.RoamRadius,
		MoveSpeed:             c.MoveSpeed,
		PauseChance:           c.PauseChance,
		DirectionChangeChance: c.DirectionChangeChance,
	}
	if t.MoveSpeed == 0 {
		t.MoveSpeed = assets.DefaultMoveSpeed
	}
	if t.PauseChance == 0 {
		t.PauseChance = assets.DefaultPauseChance
	}
	if t.DirectionChangeChance == 0 {
		t.DirectionChangeChance = assets.DefaultDirectionChangeChance
	}
	if o.RoamRadius != nil {
		t.RoamRadius = *o.RoamRadius
	}
	if o.MoveSpeed != nil {
		t.MoveSpeed = *o.MoveSpeed
	}
	if o.PauseChance != nil {
		t.PauseChance = *o.PauseChance
	}
	if o.DirectionChangeChance != nil {
		t.DirectionChangeChance = *o.DirectionChangeChance
	}
	return t
}

// Population lists the entities created by Populate.
type Population struct {
	Player     ecs.EntityID
	Characters []ecs.EntityID // roster order
}

// Populate places every roster character on its marker, then the player.
// Markers are checked before anything is created, so a failed call leaves w
// untouched.
func Populate(w *ecs.World, world *gamemap.World, roster []assets.Character) (Population, error) {
	playerMk, ok := world.Map.FindMarker(assets.PlayerSpawnMarker)
	if !ok {
		return Population{}, fmt.Errorf("%w: %q", ErrMissingSpawn, assets.PlayerSpawnMarker)
	}
	markers := make([]gamemap.Marker, len(roster))
	for i, c := range roster {
		mk, ok := world.Map.FindMarker(c.SpawnMarker)
		if !ok {
			return Population{}, fmt.Errorf("%w: %q for %s", ErrMissingSpawn, c.SpawnMarker, c.ID)
		}
		markers[i] = mk
	}

	var pop Population
	for i, c := range roster {
		id := NewCharacter(w, c, markers[i].X, markers[i].Y, Tuning(c, world.Overrides[c.ID]))
		pop.Characters = append(pop.Characters, id)
	}
	pop.Player = NewPlayer(w, playerMk.X, playerMk.Y)
	return pop, nil
}
