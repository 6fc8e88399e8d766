package system

import (
	"math"
	"math/rand"
	"time"

	"babilonia/internal/component"
	"babilonia/internal/ecs"
	"babilonia/internal/gamemap"
)

const (
	// DecisionInterval is how often an agent rolls its pause and
	// direction-change trials.
	DecisionInterval = time.Second
	// PauseDuration is how long a pause lasts once rolled.
	PauseDuration = 2 * time.Second
	// InteractionRadius is the distance, in pixels, under which the player
	// can talk to a character.
	InteractionRadius = 55.0
)

// Agent drives the autonomous wander/pause/face behaviour of one character.
// All state lives in the entity's components; the agent only holds the
// references needed to read and write them.
type Agent struct {
	world *ecs.World
	gmap  *gamemap.GameMap
	id    ecs.EntityID
	rng   *rand.Rand

	// PlayerBody is the footprint the agent avoids walking into.
	PlayerBody component.Body
}

// NewAgent binds an agent to entity id, which must carry Position and Wander.
func NewAgent(w *ecs.World, gmap *gamemap.GameMap, id ecs.EntityID, rng *rand.Rand) *Agent {
	return &Agent{world: w, gmap: gmap, id: id, rng: rng, PlayerBody: component.DefaultBody}
}

// Agents returns one agent per wandering entity in registration order.
// The agents share rng so a fixed seed replays the same session.
func Agents(w *ecs.World, gmap *gamemap.GameMap, rng *rand.Rand) []*Agent {
	ids := w.Query(component.CWander, component.CPosition)
	agents := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		agents = append(agents, NewAgent(w, gmap, id, rng))
	}
	return agents
}

// ID returns the entity the agent drives.
func (a *Agent) ID() ecs.EntityID { return a.id }

// NPC returns the identity of the character.
func (a *Agent) NPC() component.NPC {
	npc, _ := ecs.Fetch[component.NPC](a.world, a.id)
	return npc
}

// Position returns the character's current position.
func (a *Agent) Position() component.Position {
	pos, _ := ecs.Fetch[component.Position](a.world, a.id)
	return pos
}

// Facing returns the direction the character looks towards.
func (a *Agent) Facing() component.Direction {
	if f, ok := ecs.Fetch[component.Facing](a.world, a.id); ok {
		return f.Dir
	}
	return component.DirFront
}

// Motion returns the character's movement state.
func (a *Agent) Motion() component.MotionState {
	if m, ok := ecs.Fetch[component.Motion](a.world, a.id); ok {
		return m.State
	}
	return component.MotionIdle
}

// Wander returns a copy of the character's wander state.
func (a *Agent) Wander() component.Wander {
	wd, _ := ecs.Fetch[component.Wander](a.world, a.id)
	return wd
}

// SetTuning replaces the movement parameters, keeping position, spawn and
// the in-progress decision state.
func (a *Agent) SetTuning(t component.WanderTuning) {
	wd := a.Wander()
	wd.Tuning = t
	a.world.Add(a.id, wd)
}

// IsPlayerNearby reports whether the player is strictly inside the
// interaction radius.
func (a *Agent) IsPlayerNearby(player component.Position) bool {
	return a.Position().Dist(player) < InteractionRadius
}

// FacePlayer turns the character towards the player and stops it. The axis
// with the larger offset wins; ties face vertically.
func (a *Agent) FacePlayer(player component.Position) {
	pos := a.Position()
	dx, dy := player.X-pos.X, player.Y-pos.Y
	var dir component.Direction
	switch {
	case math.Abs(dx) > math.Abs(dy) && dx > 0:
		dir = component.DirRight
	case math.Abs(dx) > math.Abs(dy):
		dir = component.DirLeft
	case dy < 0:
		dir = component.DirBack
	default:
		dir = component.DirFront
	}
	a.world.Add(a.id, component.Facing{Dir: dir})
	a.world.Add(a.id, component.Motion{State: component.MotionIdle})
}

// Update advances the agent by dt. While a dialogue is open the agent is
// frozen: position, facing and motion stay exactly as they are.
func (a *Agent) Update(player component.Position, dialogueActive bool, dt time.Duration) {
	if dialogueActive {
		return
	}
	wd := a.Wander()
	pos := a.Position()
	defer func() { a.world.Add(a.id, wd) }()

	wd.SinceDecide += dt
	if wd.PauseLeft > 0 {
		wd.PauseLeft -= dt
		if wd.PauseLeft > 0 {
			a.setMotion(component.MotionPaused)
			return
		}
		wd.PauseLeft = 0
	}

	if wd.SinceDecide >= DecisionInterval {
		wd.SinceDecide = 0
		if a.rng.Float64() < wd.Tuning.PauseChance {
			wd.PauseLeft = PauseDuration
			a.setMotion(component.MotionPaused)
			return
		}
		if a.rng.Float64() < wd.Tuning.DirectionChangeChance || !wd.Committed {
			a.chooseDirection(&wd, pos)
		}
	}

	if !wd.Committed {
		a.setMotion(component.MotionIdle)
		return
	}

	step := wd.Tuning.MoveSpeed * dt.Seconds()
	dx, dy := wd.Dir.Delta()
	next := pos.Add(dx*step, dy*step)
	spawn := wd.Spawn()
	if d := next.Dist(spawn); d > wd.Tuning.RoamRadius && d >= pos.Dist(spawn) {
		turnHome(&wd, pos)
		if wd.Committed {
			a.world.Add(a.id, component.Facing{Dir: wd.Dir})
		}
		a.setMotion(component.MotionIdle)
		return
	}

	body := bodyOf(a.world, a.id)
	if body.Overlaps(next, a.PlayerBody, player) && next.Dist(player) <= pos.Dist(player) {
		wd.Committed = false
		a.setMotion(component.MotionIdle)
		return
	}
	if r, _ := TryMove(a.world, a.gmap, a.id, dx*step, dy*step); r != MoveOK {
		wd.Committed = false
		a.setMotion(component.MotionIdle)
		return
	}
	a.world.Add(a.id, component.Facing{Dir: wd.Dir})
	a.setMotion(component.MotionWalking)
}

func (a *Agent) setMotion(s component.MotionState) {
	a.world.Add(a.id, component.Motion{State: s})
}

// chooseDirection picks uniformly among the cardinals whose look-ahead point
// stays inside the roam disc. The look-ahead is one decision interval of
// travel, capped at the radius. With no valid cardinal the agent heads home.
func (a *Agent) chooseDirection(wd *component.Wander, pos component.Position) {
	reach := math.Min(wd.Tuning.MoveSpeed*DecisionInterval.Seconds(), wd.Tuning.RoamRadius)
	spawn := wd.Spawn()
	var valid []component.Direction
	for _, d := range component.Directions {
		dx, dy := d.Delta()
		if pos.Add(dx*reach, dy*reach).Dist(spawn) <= wd.Tuning.RoamRadius {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		turnHome(wd, pos)
		return
	}
	wd.Dir = valid[a.rng.Intn(len(valid))]
	wd.Committed = true
}

// turnHome commits to the cardinal that reduces the larger of the two
// offsets from spawn. At the spawn point itself there is nowhere to go and
// the agent idles.
func turnHome(wd *component.Wander, pos component.Position) {
	offX, offY := pos.X-wd.SpawnX, pos.Y-wd.SpawnY
	switch {
	case offX == 0 && offY == 0:
		wd.Committed = false
		return
	case math.Abs(offX) >= math.Abs(offY) && offX > 0:
		wd.Dir = component.DirLeft
	case math.Abs(offX) >= math.Abs(offY):
		wd.Dir = component.DirRight
	case offY > 0:
		wd.Dir = component.DirBack
	default:
		wd.Dir = component.DirFront
	}
	wd.Committed = true
}
