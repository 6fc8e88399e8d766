package system

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"babilonia/internal/component"
	"babilonia/internal/ecs"
	"babilonia/internal/gamemap"
)

const tick = 50 * time.Millisecond

// openMap creates a w×h map that is entirely passable floor.
func openMap(w, h int) *gamemap.GameMap {
	gmap := gamemap.New(w, h)
	for y := range h {
		for x := range w {
			gmap.Set(x, y, gamemap.MakeFloor())
		}
	}
	return gmap
}

// addCharacter adds a wandering character spawned at (x, y) pixels.
func addCharacter(w *ecs.World, id string, x, y float64, tuning component.WanderTuning) ecs.EntityID {
	e := w.CreateEntity()
	w.Add(e, component.Position{X: x, Y: y})
	w.Add(e, component.Wander{SpawnX: x, SpawnY: y, Tuning: tuning})
	w.Add(e, component.Facing{Dir: component.DirFront})
	w.Add(e, component.Motion{})
	w.Add(e, component.DefaultBody)
	w.Add(e, component.TagBlocking{})
	w.Add(e, component.NPC{ID: id, Name: id})
	return e
}

func walker(radius, speed float64) component.WanderTuning {
	return component.WanderTuning{RoamRadius: radius, MoveSpeed: speed}
}

// farAway is a player position that never interferes with the agents.
var farAway = component.Position{X: -10000, Y: -10000}

func TestAgentStaysInsideRoamDisc(t *testing.T) {
	tunings := []component.WanderTuning{
		{RoamRadius: 30, MoveSpeed: 10, PauseChance: 0.2, DirectionChangeChance: 0.3},
		{RoamRadius: 80, MoveSpeed: 20, PauseChance: 0.2, DirectionChangeChance: 0.3},
		{RoamRadius: 150, MoveSpeed: 40, PauseChance: 0.2, DirectionChangeChance: 0.3},
		{RoamRadius: 50, MoveSpeed: 300, PauseChance: 0, DirectionChangeChance: 1},
		{RoamRadius: 0, MoveSpeed: 40, PauseChance: 0, DirectionChangeChance: 0},
	}
	for seed := int64(1); seed <= 5; seed++ {
		w := ecs.NewWorld()
		gmap := openMap(60, 60)
		for i, tu := range tunings {
			addCharacter(w, "npc", 300+float64(i)*350, 960, tu)
		}
		rng := rand.New(rand.NewSource(seed))
		agents := Agents(w, gmap, rng)
		for step := 0; step < 4000; step++ {
			for _, a := range agents {
				a.Update(farAway, false, tick)
				wd := a.Wander()
				if d := a.Position().Dist(wd.Spawn()); d > wd.Tuning.RoamRadius+1e-9 {
					t.Fatalf("seed %d step %d: %s at distance %.3f, radius %.0f",
						seed, step, a.NPC().ID, d, wd.Tuning.RoamRadius)
				}
			}
		}
	}
}

func TestAgentFrozenDuringDialogue(t *testing.T) {
	w := ecs.NewWorld()
	gmap := openMap(30, 30)
	addCharacter(w, "akane", 480, 480, component.WanderTuning{RoamRadius: 150, MoveSpeed: 40, DirectionChangeChance: 0.3})
	a := Agents(w, gmap, rand.New(rand.NewSource(7)))[0]

	for range 40 {
		a.Update(farAway, false, tick)
	}
	pos, facing, motion := a.Position(), a.Facing(), a.Motion()
	for range 200 {
		a.Update(farAway, true, tick)
		if a.Position() != pos {
			t.Fatalf("position changed during dialogue: %v -> %v", pos, a.Position())
		}
	}
	if a.Facing() != facing || a.Motion() != motion {
		t.Errorf("facing/motion changed during dialogue: %v/%v -> %v/%v", facing, motion, a.Facing(), a.Motion())
	}
}

func TestAgentIdlesUntilFirstDecision(t *testing.T) {
	w := ecs.NewWorld()
	addCharacter(w, "mei", 320, 320, walker(120, 40))
	a := Agents(w, openMap(20, 20), rand.New(rand.NewSource(1)))[0]
	start := a.Position()

	for range 19 {
		a.Update(farAway, false, tick)
	}
	if a.Position() != start || a.Motion() != component.MotionIdle {
		t.Fatalf("agent moved before its first decision: %v %v", a.Position(), a.Motion())
	}
	a.Update(farAway, false, tick)
	if a.Motion() != component.MotionWalking {
		t.Fatalf("motion = %v after first decision; want walking", a.Motion())
	}
	if d := a.Position().Dist(start); math.Abs(d-2) > 1e-9 {
		t.Errorf("moved %.3f px in one tick at 40 px/s; want 2", d)
	}
	dx, dy := a.Facing().Delta()
	got := a.Position()
	if got != start.Add(dx*2, dy*2) {
		t.Errorf("moved to %v; facing %v implies %v", got, a.Facing(), start.Add(dx*2, dy*2))
	}
}

func TestAgentPausesWhenRolled(t *testing.T) {
	w := ecs.NewWorld()
	tu := walker(120, 40)
	tu.PauseChance = 1
	addCharacter(w, "ryo", 320, 320, tu)
	a := Agents(w, openMap(20, 20), rand.New(rand.NewSource(3)))[0]
	start := a.Position()

	for range 20 {
		a.Update(farAway, false, tick)
	}
	if a.Motion() != component.MotionPaused {
		t.Fatalf("motion = %v; want paused", a.Motion())
	}
	if a.Wander().PauseLeft != PauseDuration {
		t.Errorf("PauseLeft = %v; want %v", a.Wander().PauseLeft, PauseDuration)
	}
	for range 100 {
		a.Update(farAway, false, tick)
	}
	if a.Position() != start {
		t.Errorf("paused agent moved to %v", a.Position())
	}
}

func TestChooseDirectionFiltersLeavingCardinals(t *testing.T) {
	// On the east rim of a 100px disc with 40px look-ahead only left stays inside.
	for seed := int64(0); seed < 20; seed++ {
		w := ecs.NewWorld()
		e := addCharacter(w, "kaito", 500, 500, walker(100, 40))
		a := NewAgent(w, openMap(40, 40), e, rand.New(rand.NewSource(seed)))
		wd := a.Wander()
		a.chooseDirection(&wd, component.Position{X: 600, Y: 500})
		if !wd.Committed || wd.Dir != component.DirLeft {
			t.Fatalf("seed %d: got committed=%v dir=%v; want left", seed, wd.Committed, wd.Dir)
		}
	}
}

func TestChooseDirectionSamplesAllCardinals(t *testing.T) {
	w := ecs.NewWorld()
	e := addCharacter(w, "hiroshi", 500, 500, walker(200, 40))
	a := NewAgent(w, openMap(40, 40), e, rand.New(rand.NewSource(11)))
	seen := map[component.Direction]int{}
	for range 400 {
		wd := a.Wander()
		a.chooseDirection(&wd, wd.Spawn())
		seen[wd.Dir]++
	}
	for _, d := range component.Directions {
		if seen[d] < 50 {
			t.Errorf("direction %v chosen %d/400 times; sampling looks biased", d, seen[d])
		}
	}
}

func TestChooseDirectionForcesHomeWhenNoneValid(t *testing.T) {
	w := ecs.NewWorld()
	e := addCharacter(w, "nicolo", 500, 500, walker(10, 40))
	a := NewAgent(w, openMap(40, 40), e, rand.New(rand.NewSource(0)))
	wd := a.Wander()
	a.chooseDirection(&wd, component.Position{X: 530, Y: 505})
	if !wd.Committed || wd.Dir != component.DirLeft {
		t.Errorf("got committed=%v dir=%v; want left towards spawn", wd.Committed, wd.Dir)
	}
}

func TestTurnHome(t *testing.T) {
	cases := []struct {
		name       string
		offX, offY float64
		want       component.Direction
		committed  bool
	}{
		{"east of spawn", 20, 5, component.DirLeft, true},
		{"west of spawn", -20, 5, component.DirRight, true},
		{"below spawn", 3, 20, component.DirBack, true},
		{"above spawn", 3, -20, component.DirFront, true},
		{"diagonal tie picks x", 10, 10, component.DirLeft, true},
		{"at spawn idles", 0, 0, component.DirFront, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wd := component.Wander{SpawnX: 100, SpawnY: 100, Committed: true}
			turnHome(&wd, component.Position{X: 100 + tc.offX, Y: 100 + tc.offY})
			if wd.Committed != tc.committed {
				t.Fatalf("committed = %v; want %v", wd.Committed, tc.committed)
			}
			if tc.committed && wd.Dir != tc.want {
				t.Errorf("dir = %v; want %v", wd.Dir, tc.want)
			}
		})
	}
}

func TestAgentWalksBackAfterRadiusShrinks(t *testing.T) {
	w := ecs.NewWorld()
	e := addCharacter(w, "socrates", 500, 500, walker(300, 40))
	w.Add(e, component.Position{X: 560, Y: 500})
	a := NewAgent(w, openMap(40, 40), e, rand.New(rand.NewSource(5)))
	a.SetTuning(walker(10, 40))

	prev := a.Position().Dist(a.Wander().Spawn())
	for range 200 {
		a.Update(farAway, false, tick)
		d := a.Position().Dist(a.Wander().Spawn())
		if prev > 10 && d > prev+1e-9 {
			t.Fatalf("distance grew from %.2f to %.2f outside the shrunk disc", prev, d)
		}
		prev = d
	}
	if prev > 10 {
		t.Errorf("agent still %.2f px from spawn; want within 10", prev)
	}
	if a.Wander().SpawnX != 500 {
		t.Error("SetTuning must not move the spawn origin")
	}
}

func TestAgentBlockedByWallDropsDirection(t *testing.T) {
	w := ecs.NewWorld()
	gmap := gamemap.New(5, 5)
	gmap.Set(1, 1, gamemap.MakeFloor())
	gmap.Set(2, 1, gamemap.MakeFloor())
	// Rest against the wall east of tile (2,1).
	x := 3*gamemap.TileSize - component.DefaultBody.HalfW
	e := addCharacter(w, "akane", x, 48, walker(150, 40))
	wd := w.Get(e, component.CWander).(component.Wander)
	wd.Committed, wd.Dir = true, component.DirRight
	w.Add(e, wd)

	a := NewAgent(w, gmap, e, rand.New(rand.NewSource(0)))
	a.Update(farAway, false, tick)
	if a.Position().X != x {
		t.Errorf("agent walked into the wall: x = %v", a.Position().X)
	}
	if a.Wander().Committed {
		t.Error("blocked step should clear the committed direction")
	}
	if a.Motion() != component.MotionIdle {
		t.Errorf("motion = %v; want idle", a.Motion())
	}
}

func TestAgentDoesNotWalkIntoPlayer(t *testing.T) {
	w := ecs.NewWorld()
	e := addCharacter(w, "mei", 300, 300, walker(120, 40))
	wd := w.Get(e, component.CWander).(component.Wander)
	wd.Committed, wd.Dir = true, component.DirRight
	w.Add(e, wd)
	a := NewAgent(w, openMap(20, 20), e, rand.New(rand.NewSource(0)))

	player := component.Position{X: 300 + 2*component.DefaultBody.HalfW + 1, Y: 300}
	a.Update(player, false, tick)
	if a.Position().X != 300 {
		t.Errorf("agent stepped into the player: x = %v", a.Position().X)
	}
}

func TestIsPlayerNearby(t *testing.T) {
	w := ecs.NewWorld()
	e := addCharacter(w, "akane", 100, 100, walker(150, 40))
	a := NewAgent(w, openMap(10, 10), e, rand.New(rand.NewSource(0)))
	cases := []struct {
		p    component.Position
		want bool
	}{
		{component.Position{X: 100, Y: 154.9}, true},
		{component.Position{X: 155, Y: 100}, false},
		{component.Position{X: 130, Y: 130}, true},
		{component.Position{X: 140, Y: 140}, false},
	}
	for _, tc := range cases {
		if got := a.IsPlayerNearby(tc.p); got != tc.want {
			t.Errorf("IsPlayerNearby(%v) = %v; want %v", tc.p, got, tc.want)
		}
	}
}

func TestFacePlayer(t *testing.T) {
	cases := []struct {
		name   string
		player component.Position
		want   component.Direction
	}{
		{"player to the right", component.Position{X: 140, Y: 110}, component.DirRight},
		{"player to the left", component.Position{X: 60, Y: 90}, component.DirLeft},
		{"player above", component.Position{X: 110, Y: 60}, component.DirBack},
		{"player below", component.Position{X: 90, Y: 140}, component.DirFront},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e := addCharacter(w, "akane", 100, 100, walker(150, 40))
			w.Add(e, component.Motion{State: component.MotionWalking})
			a := NewAgent(w, openMap(10, 10), e, rand.New(rand.NewSource(0)))
			a.FacePlayer(tc.player)
			if a.Facing() != tc.want {
				t.Errorf("facing = %v; want %v", a.Facing(), tc.want)
			}
			if a.Motion() != component.MotionIdle {
				t.Errorf("motion = %v; want idle", a.Motion())
			}
		})
	}
}

func TestAgentsReturnsRegistrationOrder(t *testing.T) {
	w := ecs.NewWorld()
	names := []string{"nicolo", "akane", "hiroshi", "ryo", "mei", "kaito", "socrates"}
	for i, n := range names {
		addCharacter(w, n, float64(i)*100, 0, walker(10, 10))
	}
	agents := Agents(w, openMap(30, 5), rand.New(rand.NewSource(0)))
	if len(agents) != len(names) {
		t.Fatalf("got %d agents; want %d", len(agents), len(names))
	}
	for i, a := range agents {
		if a.NPC().ID != names[i] {
			t.Errorf("agent %d = %s; want %s", i, a.NPC().ID, names[i])
		}
	}
}
