package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"babilonia/internal/component"

	"github.com/google/uuid"
)

// State is the controller's position in a conversation.
type State uint8

const (
	Closed          State = iota
	Opening               // waiting for the provider
	Revealing             // a page is being typed out
	AwaitingAdvance       // page fully shown, waiting for the interact key
	AwaitingReply         // the player is composing an answer
	Ended                 // the character is done; next advance closes
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Revealing:
		return "revealing"
	case AwaitingAdvance:
		return "awaiting-advance"
	case AwaitingReply:
		return "awaiting-reply"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Defaults for NewController.
const (
	DefaultRevealRate = 60.0 // runes per second
	DefaultPageWidth  = 56
	DefaultPageLines  = 4
	failureText       = "…"
	maxComposerRunes  = 280
	streamBuffer      = 64
)

// chunk is a streamed fragment of a line still being fetched.
type chunk struct {
	npcID string
	text  string
}

// fetchResult carries the outcome of one provider round trip back to the
// frame loop.
type fetchResult struct {
	conv Conversation // set by the opening fetch
	line Line
	err  error
}

// Controller sequences a single conversation: open, reveal, await, advance,
// reply, close. At most one conversation is open at a time. All methods must
// be called from the goroutine that owns the game state; provider calls run
// on background goroutines and are collected by Update.
type Controller struct {
	provider Provider
	log      *slog.Logger

	// Run starts a provider call. Tests replace it to run calls inline.
	Run func(fn func())

	RevealRate float64
	PageWidth  int
	PageLines  int

	state   State
	npc     component.NPC
	session uuid.UUID
	conv    Conversation
	ctx     context.Context
	cancel  context.CancelFunc
	pending chan fetchResult
	stream  chan chunk
	preview strings.Builder // fragments of the line being fetched

	pages    []string
	page     int
	revealed float64 // runes of the current page shown so far
	after    State   // state entered once the last page is revealed

	composer []rune
	sent     string
}

// NewController returns a closed controller fetching lines from provider.
// A WebSocketProvider without an OnChunk handler is pointed at Stream, so
// fragments show while a line is still arriving.
func NewController(provider Provider, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		provider:   provider,
		log:        log,
		Run:        func(fn func()) { go fn() },
		RevealRate: DefaultRevealRate,
		PageWidth:  DefaultPageWidth,
		PageLines:  DefaultPageLines,
		stream:     make(chan chunk, streamBuffer),
	}
	if ws, ok := provider.(*WebSocketProvider); ok && ws.OnChunk == nil {
		ws.OnChunk = c.Stream
	}
	return c
}

// Stream hands a fragment of the line being fetched for npcID to the
// controller. It may be called from any goroutine and never blocks;
// fragments beyond the buffer are dropped.
func (c *Controller) Stream(npcID, text string) {
	select {
	case c.stream <- chunk{npcID: npcID, text: text}:
	default:
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// IsOpen reports whether a conversation is in progress.
func (c *Controller) IsOpen() bool { return c.state != Closed }

// Typing reports whether a page is still being revealed.
func (c *Controller) Typing() bool { return c.state == Revealing }

// Composing reports whether typed keys go to the reply composer.
func (c *Controller) Composing() bool { return c.state == AwaitingReply }

// NPC returns the character being talked to.
func (c *Controller) NPC() component.NPC { return c.npc }

// Session returns the id of the open conversation.
func (c *Controller) Session() uuid.UUID { return c.session }

// Visible returns the revealed part of the current page. While a line is
// being fetched it returns the last page of the fragments streamed so far.
func (c *Controller) Visible() string {
	if c.state == Opening {
		if c.preview.Len() == 0 {
			return ""
		}
		pages := Paginate(c.preview.String(), c.PageWidth, c.PageLines)
		return pages[len(pages)-1]
	}
	if len(c.pages) == 0 {
		return ""
	}
	p := c.pages[c.page]
	n := int(c.revealed)
	if n >= utf8.RuneCountInString(p) {
		return p
	}
	return string([]rune(p)[:n])
}

// Page returns the current page index and the page count of the line.
func (c *Controller) Page() (int, int) { return c.page, len(c.pages) }

// Composer returns the reply typed so far.
func (c *Controller) Composer() string { return string(c.composer) }

// Sent returns the last message the player sent in this conversation.
func (c *Controller) Sent() string { return c.sent }

// Start opens a conversation with npc. It does nothing when one is already
// open.
func (c *Controller) Start(npc component.NPC) {
	if c.state != Closed {
		return
	}
	c.drainStream()
	c.npc = npc
	c.session = uuid.New()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.state = Opening
	c.log.Info("dialogue opened", "npc", npc.ID, "session", c.session)

	ctx, provider := c.ctx, c.provider
	c.fetch(func() fetchResult {
		conv, err := provider.Open(ctx, npc)
		if err != nil {
			return fetchResult{err: err}
		}
		line, err := conv.Next(ctx)
		if ctx.Err() != nil {
			_ = conv.Close()
			return fetchResult{err: ctx.Err()}
		}
		return fetchResult{conv: conv, line: line, err: err}
	})
}

// Continue advances the conversation: next page, next line, or close once
// the character is done. It does nothing while a page is being revealed.
func (c *Controller) Continue() {
	switch c.state {
	case AwaitingAdvance:
		if c.page < len(c.pages)-1 {
			c.page++
			c.revealed = 0
			c.state = Revealing
			return
		}
		c.requestNext()
	case Ended:
		c.Close()
	}
}

// Type appends r to the reply composer.
func (c *Controller) Type(r rune) {
	if c.state != AwaitingReply || len(c.composer) >= maxComposerRunes {
		return
	}
	c.composer = append(c.composer, r)
}

// Backspace removes the last rune of the composer.
func (c *Controller) Backspace() {
	if c.state != AwaitingReply || len(c.composer) == 0 {
		return
	}
	c.composer = c.composer[:len(c.composer)-1]
}

// Send delivers the composed reply. Blank replies are ignored.
func (c *Controller) Send() {
	if c.state != AwaitingReply {
		return
	}
	msg := strings.TrimSpace(string(c.composer))
	if msg == "" {
		return
	}
	c.composer = c.composer[:0]
	c.sent = msg
	c.state = Opening
	ctx, conv := c.ctx, c.conv
	c.fetch(func() fetchResult {
		if err := conv.Reply(ctx, msg); err != nil {
			return fetchResult{err: err}
		}
		line, err := conv.Next(ctx)
		return fetchResult{line: line, err: err}
	})
}

// Close ends the conversation and cancels any request in flight. It is
// safe to call at any time.
func (c *Controller) Close() {
	if c.state == Closed {
		return
	}
	c.cancel()
	if c.pending != nil {
		// A late opening result still owns a connection.
		go func(ch <-chan fetchResult) {
			if res := <-ch; res.conv != nil {
				_ = res.conv.Close()
			}
		}(c.pending)
	}
	if c.conv != nil {
		if err := c.conv.Close(); err != nil {
			c.log.Debug("dialogue close", "npc", c.npc.ID, "error", err)
		}
	}
	c.log.Info("dialogue closed", "npc", c.npc.ID, "session", c.session)
	stream := c.stream
	*c = Controller{
		provider:   c.provider,
		log:        c.log,
		Run:        c.Run,
		RevealRate: c.RevealRate,
		PageWidth:  c.PageWidth,
		PageLines:  c.PageLines,
		stream:     stream,
	}
}

// Update collects finished provider calls and advances the reveal by dt.
// It returns the events carried by lines that arrived during this call.
func (c *Controller) Update(dt time.Duration) []Event {
	var events []Event
	c.collectStream()
	if c.pending != nil {
		select {
		case res := <-c.pending:
			c.pending = nil
			events = c.receive(res)
		default:
		}
	}
	if c.state == Revealing {
		c.revealed += c.RevealRate * dt.Seconds()
		if int(c.revealed) >= utf8.RuneCountInString(c.pages[c.page]) {
			if c.page < len(c.pages)-1 {
				c.state = AwaitingAdvance
			} else {
				c.state = c.after
			}
		}
	}
	return events
}

// collectStream appends the fragments for the current character while its
// line is being fetched and discards the rest.
func (c *Controller) collectStream() {
	for {
		select {
		case ch := <-c.stream:
			if c.state == Opening && ch.npcID == c.npc.ID {
				c.preview.WriteString(ch.text)
			}
		default:
			return
		}
	}
}

func (c *Controller) drainStream() {
	for {
		select {
		case <-c.stream:
		default:
			return
		}
	}
}

func (c *Controller) requestNext() {
	c.state = Opening
	ctx, conv := c.ctx, c.conv
	c.fetch(func() fetchResult {
		line, err := conv.Next(ctx)
		return fetchResult{line: line, err: err}
	})
}

func (c *Controller) fetch(call func() fetchResult) {
	ch := make(chan fetchResult, 1)
	c.pending = ch
	c.Run(func() { ch <- call() })
}

func (c *Controller) receive(res fetchResult) []Event {
	c.preview.Reset()
	if res.conv != nil {
		c.conv = res.conv
	}
	switch {
	case errors.Is(res.err, ErrNeedReply):
		c.state = AwaitingReply
		return nil
	case res.err != nil:
		c.log.Error("dialogue fetch failed", "npc", c.npc.ID, "session", c.session, "error", res.err)
		after := AwaitingReply
		if c.conv == nil {
			after = Ended
		}
		c.show(failureText, after)
		return nil
	}

	after := AwaitingAdvance
	switch {
	case res.line.End:
		after = Ended
	case res.line.Await:
		after = AwaitingReply
	}
	c.show(res.line.Text, after)
	if len(res.line.Events) > 0 {
		c.log.Info("dialogue events", "npc", c.npc.ID, "events", res.line.Events)
	}
	return res.line.Events
}

func (c *Controller) show(text string, after State) {
	c.preview.Reset()
	c.pages = Paginate(text, c.PageWidth, c.PageLines)
	c.page = 0
	c.revealed = 0
	c.after = after
	c.state = Revealing
}
