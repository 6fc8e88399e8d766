package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"babilonia/internal/component"
)

// HTTPProvider asks the service's POST /chat endpoint for whole replies.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPProvider returns a provider for the service at apiBase.
func NewHTTPProvider(apiBase string) *HTTPProvider {
	return &HTTPProvider{BaseURL: strings.TrimRight(apiBase, "/"), Client: &http.Client{}}
}

// Open starts a conversation; nothing is sent until the first Next.
func (p *HTTPProvider) Open(ctx context.Context, npc component.NPC) (Conversation, error) {
	return &httpConversation{p: p, npcID: npc.ID, pending: npc.Opening}, nil
}

type chatResponse struct {
	Response string `json:"response"`
	Event    string `json:"event,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type httpConversation struct {
	p       *HTTPProvider
	npcID   string
	pending string
	closed  atomic.Bool
}

func (c *httpConversation) Reply(ctx context.Context, msg string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.pending = msg
	return nil
}

func (c *httpConversation) Next(ctx context.Context) (Line, error) {
	if c.closed.Load() {
		return Line{}, ErrClosed
	}
	if c.pending == "" {
		return Line{}, ErrNeedReply
	}
	msg := c.pending
	c.pending = ""

	body, err := json.Marshal(chatRequest{Message: msg, PhilosopherID: c.npcID})
	if err != nil {
		return Line{}, fmt.Errorf("marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.p.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return Line{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.p.Client.Do(req)
	if err != nil {
		return Line{}, fmt.Errorf("send chat request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Line{}, fmt.Errorf("read chat response: %w", err)
	}
	var out chatResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(data, &out) == nil && out.Detail != "" {
			return Line{}, fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, out.Detail)
		}
		return Line{}, fmt.Errorf("%w: status %d", ErrService, resp.StatusCode)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Line{}, fmt.Errorf("parse chat response: %w", err)
	}
	text, events := extractEvents(out.Response, out.Event)
	return Line{Text: text, Events: events, Await: true}, nil
}

func (c *httpConversation) Close() error {
	c.closed.Store(true)
	return nil
}
