package game

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
)

// maxStep bounds dt after a stall so agents never jump across walls.
const maxStep = 250 * time.Millisecond

// Run is the frame loop. It returns when the player quits or ctx ends, and
// finalizes the screen on the way out.
func (g *Game) Run(ctx context.Context, tick time.Duration) error {
	defer g.screen.Fini()
	defer g.Close()

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go forwardEvents(g.screen, events, done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var input Input
	last := time.Now()
	g.Draw()
	for !g.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, resize := ev.(*tcell.EventResize); resize {
				g.screen.Sync()
			}
			input.Add(ev)
		case desc, ok := <-g.reload:
			if !ok {
				g.reload = nil
				continue
			}
			if desc != nil {
				g.ReloadTuning(desc)
			}
		case now := <-ticker.C:
			dt := min(now.Sub(last), maxStep)
			last = now
			g.Step(input.Take(), dt)
			g.Draw()
		}
	}
	g.log.Info("player quit")
	return nil
}

// forwardEvents pumps screen events into events until the screen is
// finalized or done is closed.
func forwardEvents(s tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}
