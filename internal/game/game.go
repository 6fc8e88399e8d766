package game

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"babilonia/assets"
	"babilonia/internal/backend"
	"babilonia/internal/component"
	"babilonia/internal/dialogue"
	"babilonia/internal/ecs"
	"babilonia/internal/factory"
	"babilonia/internal/gamemap"
	"babilonia/internal/overlay"
	"babilonia/internal/render"
	"babilonia/internal/system"

	"github.com/gdamore/tcell/v2"
)

// DefaultVictoryDelay is the game time between the victory event and the
// victory screen.
const DefaultVictoryDelay = 2 * time.Second

// moveHold keeps a direction held between key repeats; terminals report
// presses only.
const moveHold = 150 * time.Millisecond

// pauseItems are the pause menu entries, in order.
var pauseItems = []string{"Riprendi", "Mostra/nascondi nomi", "Esci"}

const (
	pauseResume = iota
	pauseLabels
	pauseQuit
)

// Resetter asks the conversation service to forget a finished game.
type Resetter interface {
	ResetAsync(ctx context.Context) <-chan backend.Result
}

// WorldSource loads the world description. It is called when the game
// starts and again on every restart.
type WorldSource func() (*gamemap.World, error)

// Options configures a Game.
type Options struct {
	World        WorldSource
	Provider     dialogue.Provider
	Reset        Resetter // optional
	Rand         *rand.Rand
	Log          *slog.Logger
	VictoryDelay time.Duration
	Roster       []assets.Character // defaults to assets.Characters
	// Reload delivers re-read world descriptions whose tuning is applied
	// to the running characters.
	Reload <-chan *gamemap.World
}

// Game is the top-level orchestrator. All of its state is owned by the
// goroutine running Run (or calling Step and Draw).
type Game struct {
	screen   tcell.Screen
	renderer *render.Renderer
	log      *slog.Logger
	rng      *rand.Rand

	source   WorldSource
	roster   []assets.Character
	provider dialogue.Provider
	resetter Resetter
	reload   <-chan *gamemap.World

	ctx    context.Context
	cancel context.CancelFunc

	desc     *gamemap.World
	world    *ecs.World
	gmap     *gamemap.GameMap
	playerID ecs.EntityID
	agents   []*system.Agent

	dialogue *dialogue.Controller
	tutorial *overlay.Sequencer
	victory  *overlay.Sequencer

	flags    Flags
	pauseSel int
	quit     bool

	gameWon        bool
	victoryPending bool
	victoryIn      time.Duration
	victoryDelay   time.Duration

	reset     <-chan backend.Result
	candidate *system.Agent
	heading   system.Heading
	holdLeft  time.Duration
	hitboxes  []render.Hitbox
}

// New builds the world and opens the tutorial. A world that cannot be
// loaded or populated is an error.
func New(screen tcell.Screen, opts Options) (*Game, error) {
	if opts.World == nil {
		opts.World = func() (*gamemap.World, error) { return gamemap.Parse(assets.DefaultWorld) }
	}
	if opts.Provider == nil {
		opts.Provider = dialogue.NewScriptProvider(assets.Guide, assets.OfflineFinale, assets.Witnesses)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Roster == nil {
		opts.Roster = assets.Characters
	}

	g := &Game{
		screen:       screen,
		renderer:     render.NewRenderer(screen),
		log:          opts.Log,
		rng:          opts.Rand,
		source:       opts.World,
		roster:       opts.Roster,
		provider:     opts.Provider,
		resetter:     opts.Reset,
		reload:       opts.Reload,
		dialogue:     dialogue.NewController(opts.Provider, opts.Log),
		tutorial:     overlay.New(assets.TutorialPages),
		victory:      overlay.New(assets.VictoryPages),
		victoryDelay: opts.VictoryDelay,
		flags:        Flags{LabelsVisible: true},
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())
	g.tutorial.OnClose = func() { g.log.Info("tutorial closed") }
	g.victory.OnButton = func(id string) {
		if id == assets.ButtonRestart {
			g.Restart()
		}
	}

	if err := g.loadWorld(); err != nil {
		g.cancel()
		return nil, err
	}
	g.tutorial.Open()
	g.log.Info("game started", "world", g.desc.Name, "characters", len(g.agents))
	return g, nil
}

// loadWorld rebuilds every entity from the world source. When the source
// fails but a world was loaded before, that world is rebuilt instead. On
// error the running world is left untouched.
func (g *Game) loadWorld() error {
	desc, err := g.source()
	if err != nil {
		if g.desc == nil {
			return fmt.Errorf("load world: %w", err)
		}
		g.log.Warn("world reload failed, rebuilding previous world", "error", err)
		desc = g.desc
	}

	w := ecs.NewWorld()
	pop, err := factory.Populate(w, desc, g.roster)
	if err != nil {
		return fmt.Errorf("populate world: %w", err)
	}
	g.desc, g.world, g.gmap = desc, w, desc.Map
	g.playerID = pop.Player
	g.agents = system.Agents(w, desc.Map, g.rng)
	g.candidate = nil
	g.heading, g.holdLeft = system.Heading{}, 0
	return nil
}

// Mode returns the active mode.
func (g *Game) Mode() Mode {
	return resolveMode(g.victory.IsOpen(), g.tutorial.IsOpen(), g.dialogue.IsOpen())
}

// Flags returns the view toggles.
func (g *Game) Flags() Flags { return g.flags }

// Won reports whether the victory latch is set.
func (g *Game) Won() bool { return g.gameWon }

// Done reports whether the player asked to quit.
func (g *Game) Done() bool { return g.quit }

// Step advances the game by dt using the input gathered since the last
// step. The order is fixed: input, mode, player movement, agents,
// interaction, dialogue, timers, events.
func (g *Game) Step(in InputFrame, dt time.Duration) {
	g.pollReset()
	if in.Has(CmdQuit) {
		g.quit = true
		return
	}

	if g.flags.Paused {
		g.handlePause(in)
		return
	}
	switch g.Mode() {
	case ModeVictory:
		g.handleOverlay(g.victory, in)
		return
	case ModeTutorial:
		g.handleOverlay(g.tutorial, in)
		return
	}

	interact := g.handleCommands(in)
	if g.flags.Paused || g.quit {
		return
	}

	if g.Mode() == ModeRoam {
		system.MovePlayer(g.world, g.gmap, g.playerID, g.updateHeading(in, dt), dt)
	} else {
		g.heading, g.holdLeft = system.Heading{}, 0
		g.world.Add(g.playerID, component.Motion{State: component.MotionIdle})
	}
	player := g.playerPosition()

	dialogueActive := g.dialogue.IsOpen()
	for _, a := range g.agents {
		a.Update(player, dialogueActive, dt)
	}

	g.interact(player, interact)
	events := g.dialogue.Update(dt)
	g.tickTimers(dt)
	for _, ev := range events {
		g.HandleEvent(ev)
	}
}

// handleCommands applies the Roam and Dialogue commands of the frame and
// reports whether the interact key was pressed.
func (g *Game) handleCommands(in InputFrame) bool {
	interact := false
	for _, cmd := range in.Commands {
		if g.dialogue.Composing() {
			switch cmd.Kind {
			case CmdMove, CmdInteract, CmdRune:
				if cmd.Rune != 0 {
					g.dialogue.Type(cmd.Rune)
				}
			case CmdBackspace:
				g.dialogue.Backspace()
			case CmdConfirm:
				g.dialogue.Send()
			case CmdCancel:
				g.dialogue.Close()
			}
			continue
		}
		switch cmd.Kind {
		case CmdInteract:
			interact = true
		case CmdConfirm:
			if g.dialogue.IsOpen() {
				interact = true
			}
		case CmdCancel:
			if g.dialogue.IsOpen() {
				g.dialogue.Close()
				continue
			}
			g.setPaused(true)
			return false
		}
	}
	return interact
}

// updateHeading returns the direction the player holds this frame.
func (g *Game) updateHeading(in InputFrame, dt time.Duration) system.Heading {
	if h := in.Heading(); !h.Zero() {
		g.heading, g.holdLeft = h, moveHold
		return h
	}
	g.holdLeft -= dt
	if g.holdLeft <= 0 {
		g.heading, g.holdLeft = system.Heading{}, 0
	}
	return g.heading
}

// interact runs proximity detection: the first character in range can be
// talked to, and walking out of range ends the conversation.
func (g *Game) interact(player component.Position, pressed bool) {
	cand := system.FindInteractable(g.agents, player)
	g.candidate = cand
	if cand == nil {
		if g.dialogue.IsOpen() {
			g.log.Debug("player walked away", "npc", g.dialogue.NPC().ID)
			g.dialogue.Close()
		}
		return
	}
	if pressed {
		if !g.dialogue.IsOpen() {
			g.dialogue.Start(cand.NPC())
		} else if !g.dialogue.Typing() {
			g.dialogue.Continue()
		}
	}
	if g.dialogue.IsOpen() {
		cand.FacePlayer(player)
	}
}

// HandleEvent reacts to a domain event carried by a dialogue line.
func (g *Game) HandleEvent(ev dialogue.Event) {
	switch ev {
	case dialogue.EventVictory:
		if g.gameWon {
			g.log.Debug("victory already triggered")
			return
		}
		g.gameWon = true
		g.victoryPending = true
		g.victoryIn = g.victoryDelay
		g.log.Info("victory triggered", "delay", g.victoryDelay)
	default:
		g.log.Debug("unhandled event", "event", ev)
	}
}

// tickTimers counts down the victory delay and opens the victory screen
// once it runs out.
func (g *Game) tickTimers(dt time.Duration) {
	if !g.victoryPending {
		return
	}
	g.victoryIn -= dt
	if g.victoryIn > 0 {
		return
	}
	g.victoryPending = false
	g.dialogue.Close()
	g.victory.Open()
}

// handleOverlay routes the frame's commands to an open overlay. Commands
// after the one that closes it are dropped.
func (g *Game) handleOverlay(seq *overlay.Sequencer, in InputFrame) {
	for _, cmd := range in.Commands {
		if !seq.IsOpen() {
			return
		}
		switch cmd.Kind {
		case CmdConfirm, CmdInteract:
			seq.Click(overlay.Background)
		case CmdClick:
			seq.Click(render.HitTest(g.hitboxes, cmd.X, cmd.Y))
		case CmdCancel:
			g.setPaused(true)
			return
		case CmdRune, CmdMove:
			if t, ok := seq.Hotkey(cmd.Rune); ok {
				seq.Click(t)
			}
		}
	}
}

// Restart starts a new game: the victory screen closes, the latch resets,
// the service is asked to forget the last game and the world is rebuilt.
// The reset runs in the background and never delays the restart.
func (g *Game) Restart() {
	g.log.Info("restarting game")
	g.victory.Close()
	g.dialogue.Close()
	g.gameWon = false
	g.victoryPending = false
	g.victoryIn = 0
	g.flags.Paused = false

	if g.resetter != nil {
		g.reset = g.resetter.ResetAsync(g.ctx)
	}
	if f, ok := g.provider.(interface{ Forget() }); ok {
		f.Forget()
	}
	if err := g.loadWorld(); err != nil {
		g.log.Error("rebuild world, keeping the current one", "error", err)
	}
	g.tutorial.Open()
}

// pollReset logs the outcome of a finished reset request.
func (g *Game) pollReset() {
	if g.reset == nil {
		return
	}
	select {
	case res := <-g.reset:
		g.reset = nil
		if res.OK() {
			g.log.Info("memory reset", "status", res.Status, "elapsed", res.Elapsed)
		} else {
			g.log.Warn("memory reset failed", "status", res.Status, "elapsed", res.Elapsed, "error", res.Err)
		}
	default:
	}
}

// ReloadTuning applies the character overrides of desc to the running
// characters. Positions and the map are left alone; a new map takes effect
// on the next restart.
func (g *Game) ReloadTuning(desc *gamemap.World) {
	n := 0
	for _, a := range g.agents {
		id := a.NPC().ID
		for _, c := range g.roster {
			if c.ID == id {
				a.SetTuning(factory.Tuning(c, desc.Overrides[id]))
				n++
				break
			}
		}
	}
	g.desc = &gamemap.World{Name: g.desc.Name, Map: g.desc.Map, Overrides: desc.Overrides}
	g.log.Info("character tuning reloaded", "characters", n)
}

func (g *Game) setPaused(p bool) {
	g.flags.Paused = p
	g.pauseSel = pauseResume
	g.heading, g.holdLeft = system.Heading{}, 0
}

// handlePause drives the pause menu.
func (g *Game) handlePause(in InputFrame) {
	for _, cmd := range in.Commands {
		switch cmd.Kind {
		case CmdCancel:
			g.setPaused(false)
			return
		case CmdMove:
			switch cmd.Dir {
			case component.DirBack:
				g.pauseSel = (g.pauseSel + len(pauseItems) - 1) % len(pauseItems)
			case component.DirFront:
				g.pauseSel = (g.pauseSel + 1) % len(pauseItems)
			}
		case CmdConfirm, CmdInteract:
			g.selectPause(g.pauseSel)
		case CmdRune:
			switch cmd.Rune {
			case 'q':
				g.selectPause(pauseQuit)
			case 'n':
				g.selectPause(pauseLabels)
			}
		}
		if !g.flags.Paused || g.quit {
			return
		}
	}
}

func (g *Game) selectPause(item int) {
	switch item {
	case pauseResume:
		g.setPaused(false)
	case pauseLabels:
		g.flags.LabelsVisible = !g.flags.LabelsVisible
	case pauseQuit:
		g.quit = true
	}
}

// Draw renders the current frame.
func (g *Game) Draw() {
	player := g.playerPosition()
	g.renderer.CenterOn(player.X, player.Y)

	mode := g.Mode()
	talk := ecs.NilEntity
	if g.candidate != nil && mode == ModeRoam {
		talk = g.candidate.ID()
	}
	g.renderer.DrawFrame(g.world, g.gmap, render.FrameOptions{Labels: g.flags.LabelsVisible, Talk: talk})
	g.renderer.DrawHUD(g.status(), g.hint(mode))

	g.hitboxes = nil
	switch mode {
	case ModeDialogue:
		g.renderer.DrawDialogue(g.dialogueView())
	case ModeTutorial:
		g.hitboxes = g.drawOverlay(g.tutorial)
	case ModeVictory:
		g.hitboxes = g.drawOverlay(g.victory)
	}
	if g.flags.Paused {
		g.renderer.DrawPause("⏸ PAUSA", pauseItems, g.pauseSel)
	}
	g.renderer.Show()
}

func (g *Game) drawOverlay(seq *overlay.Sequencer) []render.Hitbox {
	page, ok := seq.Current()
	if !ok {
		return nil
	}
	return g.renderer.DrawOverlay(page, seq.Index(), seq.Len())
}

func (g *Game) dialogueView() render.DialogueView {
	page, pages := g.dialogue.Page()
	state := g.dialogue.State()
	return render.DialogueView{
		Speaker:   g.dialogue.NPC().Name,
		Text:      g.dialogue.Visible(),
		Page:      page,
		Pages:     pages,
		Waiting:   state == dialogue.Opening,
		More:      state == dialogue.AwaitingAdvance,
		Ended:     state == dialogue.Ended,
		Composing: g.dialogue.Composing(),
		Composer:  g.dialogue.Composer(),
	}
}

func (g *Game) status() string {
	s := fmt.Sprintf("🏛️ %s · %s", g.desc.Name, assets.PlayerName)
	if g.gameWon {
		s += " · 👑 mistero risolto"
	}
	return s
}

func (g *Game) hint(mode Mode) string {
	switch {
	case g.flags.Paused:
		return "↑↓ scegli · INVIO conferma · ESC riprendi"
	case mode == ModeTutorial || mode == ModeVictory:
		return "INVIO o clic: continua"
	case mode == ModeDialogue && g.dialogue.Composing():
		return "Scrivi la tua risposta · INVIO invia · ESC chiudi"
	case mode == ModeDialogue:
		return "SPAZIO continua · ESC chiudi"
	case g.candidate != nil:
		return "SPAZIO: parla con " + g.candidate.NPC().Name
	}
	return "FRECCE muoviti · ESC pausa"
}

func (g *Game) playerPosition() component.Position {
	pos, _ := ecs.Fetch[component.Position](g.world, g.playerID)
	return pos
}

// Close ends any conversation and cancels background requests.
func (g *Game) Close() {
	g.dialogue.Close()
	g.cancel()
}
