package dialogue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"babilonia/internal/component"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer answers /chat and /ws/chat with reply(message).
func chatServer(t *testing.T, reply func(req chatRequest) []map[string]any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/chat", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req chatRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			for _, frame := range reply(req) {
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			}
		}
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"detail":"bad request"}`, http.StatusBadRequest)
			return
		}
		frames := reply(req)
		last := frames[len(frames)-1]
		if msg, ok := last["error"]; ok {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"detail": msg})
			return
		}
		_ = json.NewEncoder(w).Encode(last)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func streamed(text string) []map[string]any {
	half := len(text) / 2
	return []map[string]any{
		{"streaming": true},
		{"chunk": text[:half]},
		{"chunk": text[half:]},
		{"response": text, "streaming": false},
	}
}

func TestNewWebSocketProviderURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8000/ws/chat", NewWebSocketProvider("http://localhost:8000/").URL)
	assert.Equal(t, "wss://api.example.com/ws/chat", NewWebSocketProvider("https://api.example.com").URL)
}

func TestWebSocketConversation(t *testing.T) {
	got := make(chan chatRequest, 4)
	srv := chatServer(t, func(req chatRequest) []map[string]any {
		got <- req
		if req.Message == "Bobby" {
			return streamed("Hai ragione! VICTORY_TRIGGERED")
		}
		return streamed("Benvenuta, " + req.Message)
	})
	p := NewWebSocketProvider(srv.URL)
	var chunks []string
	p.OnChunk = func(npcID, chunk string) { chunks = append(chunks, npcID+":"+chunk) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conv, err := p.Open(ctx, component.NPC{ID: "nicolo", Opening: "Ciao"})
	require.NoError(t, err)
	defer conv.Close()

	line, err := conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Benvenuta, Ciao", line.Text)
	assert.True(t, line.Await)
	assert.Empty(t, line.Events)
	assert.Len(t, chunks, 2)

	_, err = conv.Next(ctx)
	assert.ErrorIs(t, err, ErrNeedReply)

	require.NoError(t, conv.Reply(ctx, "Bobby"))
	line, err = conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hai ragione!", line.Text)
	assert.Equal(t, []Event{EventVictory}, line.Events)

	require.Len(t, got, 2)
	assert.Equal(t, chatRequest{Message: "Ciao", PhilosopherID: "nicolo"}, <-got)
	assert.Equal(t, "Bobby", (<-got).Message)
}

func TestWebSocketChunksWithoutFinalResponse(t *testing.T) {
	srv := chatServer(t, func(req chatRequest) []map[string]any {
		return []map[string]any{{"chunk": "solo "}, {"chunk": "pezzi"}, {"streaming": false, "event": "victory"}}
	})
	ctx := context.Background()
	conv, err := NewWebSocketProvider(srv.URL).Open(ctx, component.NPC{ID: "mei", Opening: "?"})
	require.NoError(t, err)
	defer conv.Close()
	line, err := conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "solo pezzi", line.Text)
	assert.Equal(t, []Event{EventVictory}, line.Events)
}

func TestWebSocketErrorFrame(t *testing.T) {
	srv := chatServer(t, func(req chatRequest) []map[string]any {
		return []map[string]any{{"error": "Invalid message format"}}
	})
	ctx := context.Background()
	conv, err := NewWebSocketProvider(srv.URL).Open(ctx, component.NPC{ID: "ryo", Opening: "?"})
	require.NoError(t, err)
	defer conv.Close()
	_, err = conv.Next(ctx)
	assert.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "Invalid message format")
}

func TestWebSocketNextHonoursCancel(t *testing.T) {
	srv := chatServer(t, func(req chatRequest) []map[string]any { return nil })
	conv, err := NewWebSocketProvider(srv.URL).Open(context.Background(), component.NPC{ID: "kaito", Opening: "?"})
	require.NoError(t, err)
	defer conv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	start := time.Now()
	_, err = conv.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWebSocketDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err := NewWebSocketProvider(srv.URL).Open(context.Background(), component.NPC{ID: "akane"})
	assert.Error(t, err)
}

func TestWebSocketClosedConversation(t *testing.T) {
	srv := chatServer(t, func(req chatRequest) []map[string]any { return streamed("ok") })
	conv, err := NewWebSocketProvider(srv.URL).Open(context.Background(), component.NPC{ID: "akane", Opening: "?"})
	require.NoError(t, err)
	require.NoError(t, conv.Close())
	assert.NoError(t, conv.Close())
	_, err = conv.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHTTPConversation(t *testing.T) {
	srv := chatServer(t, func(req chatRequest) []map[string]any {
		if req.Message == "Bobby" {
			return []map[string]any{{"response": "VICTORY_TRIGGERED Esatto."}}
		}
		return []map[string]any{{"response": strings.ToUpper(req.Message)}}
	})
	ctx := context.Background()
	conv, err := NewHTTPProvider(srv.URL).Open(ctx, component.NPC{ID: "socrates", Opening: "ciao"})
	require.NoError(t, err)

	line, err := conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Line{Text: "CIAO", Await: true}, line)

	_, err = conv.Next(ctx)
	assert.ErrorIs(t, err, ErrNeedReply)

	require.NoError(t, conv.Reply(ctx, "Bobby"))
	line, err = conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Esatto.", line.Text)
	assert.Equal(t, []Event{EventVictory}, line.Events)

	require.NoError(t, conv.Close())
	_, err = conv.Next(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHTTPServiceError(t *testing.T) {
	srv := chatServer(t, func(req chatRequest) []map[string]any {
		return []map[string]any{{"error": "model unavailable"}}
	})
	ctx := context.Background()
	conv, err := NewHTTPProvider(srv.URL).Open(ctx, component.NPC{ID: "akane", Opening: "?"})
	require.NoError(t, err)
	_, err = conv.Next(ctx)
	assert.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestScriptProvider(t *testing.T) {
	p := NewScriptProvider("nicolo", "Sono io, Bobby.", []string{"akane"})
	ctx := context.Background()
	nicolo := component.NPC{ID: "nicolo", Lines: []string{"Benvenuta."}}
	akane := component.NPC{ID: "akane", Lines: []string{"Hmph.", "B."}}

	conv, err := p.Open(ctx, nicolo)
	require.NoError(t, err)
	line, err := conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Line{Text: "Benvenuta.", End: true}, line)

	conv, err = p.Open(ctx, akane)
	require.NoError(t, err)
	line, _ = conv.Next(ctx)
	assert.False(t, line.End)
	assert.False(t, p.Heard("akane"))
	line, _ = conv.Next(ctx)
	assert.True(t, line.End)
	assert.True(t, p.Heard("akane"))
	line, _ = conv.Next(ctx)
	assert.True(t, line.End, "reading past the end keeps ending")

	conv, err = p.Open(ctx, nicolo)
	require.NoError(t, err)
	line, err = conv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sono io, Bobby.", line.Text)
	assert.Equal(t, []Event{EventVictory}, line.Events)
	assert.True(t, line.End)

	p.Forget()
	assert.False(t, p.Heard("akane"))
	conv, _ = p.Open(ctx, nicolo)
	line, _ = conv.Next(ctx)
	assert.Equal(t, "Benvenuta.", line.Text)
}

func TestScriptProviderEmptyLines(t *testing.T) {
	conv, err := NewScriptProvider("", "", nil).Open(context.Background(), component.NPC{ID: "x"})
	require.NoError(t, err)
	line, err := conv.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, failureText, line.Text)
	assert.True(t, line.End)
}
