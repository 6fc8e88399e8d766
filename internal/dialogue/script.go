package dialogue

import (
	"context"
	"sync"

	"babilonia/internal/component"
)

// ScriptProvider plays each character's offline lines. Once every witness
// has been heard to the end, talking to the guide plays the finale, which
// carries the victory event.
type ScriptProvider struct {
	Guide     string   // character id that delivers the finale
	Finale    string   // finale text
	Witnesses []string // character ids whose scripts must be finished first

	mu    sync.Mutex
	heard map[string]bool
}

// NewScriptProvider returns an offline provider.
func NewScriptProvider(guide, finale string, witnesses []string) *ScriptProvider {
	return &ScriptProvider{Guide: guide, Finale: finale, Witnesses: witnesses, heard: map[string]bool{}}
}

// Open starts the character's script from its first line.
func (p *ScriptProvider) Open(ctx context.Context, npc component.NPC) (Conversation, error) {
	lines := npc.Lines
	if npc.ID == p.Guide && p.Finale != "" && p.solved() {
		lines = []string{p.Finale + " " + victoryMarker}
	}
	if len(lines) == 0 {
		lines = []string{failureText}
	}
	return &scriptConversation{p: p, npcID: npc.ID, lines: lines}, nil
}

// Heard reports whether the character's script was played to the end.
func (p *ScriptProvider) Heard(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heard[id]
}

// Forget clears which scripts have been heard, for a new game.
func (p *ScriptProvider) Forget() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heard = map[string]bool{}
}

func (p *ScriptProvider) solved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range p.Witnesses {
		if !p.heard[id] {
			return false
		}
	}
	return true
}

func (p *ScriptProvider) markHeard(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.heard == nil {
		p.heard = map[string]bool{}
	}
	p.heard[id] = true
}

type scriptConversation struct {
	p     *ScriptProvider
	npcID string
	lines []string
	next  int
}

func (c *scriptConversation) Next(ctx context.Context) (Line, error) {
	if err := ctx.Err(); err != nil {
		return Line{}, err
	}
	if c.next >= len(c.lines) {
		return Line{End: true}, nil
	}
	text, events := extractEvents(c.lines[c.next], "")
	c.next++
	end := c.next == len(c.lines)
	if end {
		c.p.markHeard(c.npcID)
	}
	return Line{Text: text, Events: events, End: end}, nil
}

// Reply is accepted and ignored; scripted characters do not listen.
func (c *scriptConversation) Reply(ctx context.Context, msg string) error { return nil }

func (c *scriptConversation) Close() error { return nil }
