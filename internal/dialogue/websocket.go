package dialogue

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"babilonia/internal/component"

	"github.com/gorilla/websocket"
)

// chatRequest is the message both transports send to the service.
type chatRequest struct {
	Message       string `json:"message"`
	PhilosopherID string `json:"philosopher_id"`
}

// wsFrame is any frame the service streams back. A frame carries exactly
// one of: a streaming flag, a chunk, the final response, or an error.
type wsFrame struct {
	Streaming *bool   `json:"streaming,omitempty"`
	Chunk     string  `json:"chunk,omitempty"`
	Response  *string `json:"response,omitempty"`
	Error     string  `json:"error,omitempty"`
	Event     string  `json:"event,omitempty"`
}

// WebSocketProvider streams replies from the service's /ws/chat endpoint.
// Each conversation holds its own connection.
type WebSocketProvider struct {
	URL    string // ws:// or wss:// endpoint
	Dialer *websocket.Dialer
	Header http.Header
	// OnChunk, when set, receives streamed fragments as they arrive.
	OnChunk func(npcID, chunk string)
}

// NewWebSocketProvider derives the endpoint from an http(s) API base.
func NewWebSocketProvider(apiBase string) *WebSocketProvider {
	u := strings.TrimRight(apiBase, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return &WebSocketProvider{
		URL:    u + "/ws/chat",
		Dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Open dials the service. The character's opening prompt is sent by the
// first Next.
func (p *WebSocketProvider) Open(ctx context.Context, npc component.NPC) (Conversation, error) {
	conn, resp, err := p.Dialer.DialContext(ctx, p.URL, p.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", p.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", p.URL, err)
	}
	return &wsConversation{
		conn:    conn,
		npcID:   npc.ID,
		pending: npc.Opening,
		onChunk: p.OnChunk,
	}, nil
}

type wsConversation struct {
	conn    *websocket.Conn
	npcID   string
	pending string // message to send before the next read
	awaited bool   // a request is on the wire and its answer not yet read
	onChunk func(npcID, chunk string)

	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *wsConversation) Reply(ctx context.Context, msg string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.pending = msg
	return nil
}

func (c *wsConversation) Next(ctx context.Context) (Line, error) {
	if c.closed.Load() {
		return Line{}, ErrClosed
	}
	if c.pending != "" {
		if err := c.send(ctx, c.pending); err != nil {
			return Line{}, err
		}
		c.pending = ""
		c.awaited = true
	}
	if !c.awaited {
		return Line{}, ErrNeedReply
	}

	// Wake a blocked read when ctx ends.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(dl)
	} else {
		_ = c.conn.SetReadDeadline(time.Time{})
	}

	var sb strings.Builder
	var event string
	for {
		var f wsFrame
		if err := c.conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return Line{}, ctx.Err()
			}
			return Line{}, fmt.Errorf("read frame: %w", err)
		}
		if f.Event != "" {
			event = f.Event
		}
		switch {
		case f.Error != "":
			c.awaited = false
			return Line{}, fmt.Errorf("%w: %s", ErrService, f.Error)
		case f.Chunk != "":
			sb.WriteString(f.Chunk)
			if c.onChunk != nil {
				c.onChunk(c.npcID, f.Chunk)
			}
		case f.Response != nil:
			c.awaited = false
			text, events := extractEvents(*f.Response, event)
			return Line{Text: text, Events: events, Await: true}, nil
		case f.Streaming != nil && !*f.Streaming:
			c.awaited = false
			text, events := extractEvents(sb.String(), event)
			return Line{Text: text, Events: events, Await: true}, nil
		}
	}
}

func (c *wsConversation) send(ctx context.Context, msg string) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
	}
	if err := c.conn.WriteJSON(chatRequest{Message: msg, PhilosopherID: c.npcID}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (c *wsConversation) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}
