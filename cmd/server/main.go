// babilonia-server hosts the game over SSH. Every connection plays its own
// independent game. Build:
//
//	go build -o babilonia-server ./cmd/server
//
// Usage:
//
//	./babilonia-server [--port 2222] [--key server_host_key] [--max 32]
//
// Connect with:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"babilonia/internal/config"
	"babilonia/internal/game"
	"babilonia/internal/logger"
	internalssh "babilonia/internal/ssh"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	xssh "golang.org/x/crypto/ssh"
)

// maxNameBytes bounds the user name carried in log lines.
const maxNameBytes = 16

// allowedTerms are the TERM values passed to terminfo. Anything else falls
// back to internalssh.DefaultTerm.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

func main() {
	port := flag.Int("port", 2222, "SSH server port")
	keyFile := flag.String("key", "server_host_key", "Path to the PEM-encoded host key (generated if absent)")
	maxSessions := flag.Int("max", 32, "Maximum concurrent games")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg, os.Stderr)

	signer, err := loadOrCreateHostKey(*keyFile, log)
	if err != nil {
		log.Error("host key", "error", err)
		os.Exit(1)
	}

	h := &host{cfg: cfg, log: log, slots: make(chan struct{}, *maxSessions)}
	srv := &gossh.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: h.handle,
		// Any client may request a PTY.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// No authentication: anyone who can reach the port may play.
		HostSigners: []gossh.Signer{signer},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Warn("shutdown", "error", err)
		}
	}()

	log.Info("babilonia SSH server listening", "port", *port, "dialogue", cfg.Dialogue, "api", cfg.APIBase)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		log.Error("serve", "error", err)
		os.Exit(1)
	}
}

// host runs one game per SSH session.
type host struct {
	cfg   *config.Config
	log   *slog.Logger
	slots chan struct{}
}

// handle is the gliderlabs handler for one connection. It blocks until the
// game ends or the client disconnects.
func (h *host) handle(s gossh.Session) {
	pty, winCh, hasPTY := s.Pty()
	if !hasPTY {
		fmt.Fprintln(s, "Babilonia needs a terminal. Connect with: ssh -t -p 2222 <host>")
		_ = s.Exit(1)
		return
	}

	log := h.log.With(
		"session", uuid.NewString(),
		"user", sanitizeName(s.User()),
		"remote", s.RemoteAddr().String(),
	)

	select {
	case h.slots <- struct{}{}:
		defer func() { <-h.slots }()
	default:
		log.Warn("session refused, server full")
		fmt.Fprintln(s, "La città è piena. Riprova più tardi.")
		_ = s.Exit(1)
		return
	}

	tty := internalssh.NewSessionTty(s, pty, winCh)
	term := tty.Term()
	if !allowedTerms[term] {
		log.Info("unsupported terminal, using default", "term", term)
		term = internalssh.DefaultTerm
	}

	screen, err := newScreen(tty, term)
	if err != nil {
		log.Warn("terminal setup failed", "error", err)
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	if err := screen.Init(); err != nil {
		log.Warn("screen init failed", "error", err)
		fmt.Fprintf(s, "Screen init failed: %v\n", err)
		return
	}
	screen.EnableMouse()

	g, err := game.New(screen, game.Setup(h.cfg, log))
	if err != nil {
		screen.Fini()
		logger.WithError(log, err).Error("game setup failed")
		return
	}

	log.Info("session started", "term", term)
	err = g.Run(s.Context(), h.cfg.Tick)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(log, err).Warn("session ended with error")
		return
	}
	log.Info("session ended", "won", g.Won())
}

// termMu serializes the TERM lookup: terminfo reads it from the process
// environment.
var termMu sync.Mutex

func newScreen(tty tcell.Tty, term string) (tcell.Screen, error) {
	termMu.Lock()
	defer termMu.Unlock()
	_ = os.Setenv("TERM", term)
	return tcell.NewTerminfoScreenFromTty(tty)
}

// sanitizeName drops control characters from an SSH user name and cuts it
// to maxNameBytes without splitting a rune.
func sanitizeName(name string) string {
	out := make([]byte, 0, maxNameBytes)
	for _, r := range name {
		if unicode.IsControl(r) || r == utf8.RuneError {
			continue
		}
		if len(out)+utf8.RuneLen(r) > maxNameBytes {
			break
		}
		out = utf8.AppendRune(out, r)
	}
	return string(out)
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, log *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			log.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	log.Info("generating ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	block, err := xssh.MarshalPrivateKey(key, "babilonia server")
	if err != nil {
		log.Warn("host key not saved", "error", err)
		return signer, nil
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		log.Warn("host key not saved", "path", path, "error", err)
	}
	return signer, nil
}
