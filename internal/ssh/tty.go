// Package ssh lets a tcell screen run over an SSH session.
package ssh

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// DefaultTerm is assumed when the client does not name its terminal.
const DefaultTerm = "xterm-256color"

// SessionTty implements tcell.Tty on top of a gliderlabs/ssh session.
// Every connection gets its own SessionTty and therefore its own screen.
type SessionTty struct {
	session gossh.Session
	term    string

	mu       sync.Mutex
	window   gossh.Window
	onResize func()

	stop chan struct{}
	once sync.Once
}

// NewSessionTty wraps s. pty carries the terminal name and initial size;
// window changes arriving on winCh are tracked until Close.
func NewSessionTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *SessionTty {
	term := pty.Term
	if term == "" {
		term = DefaultTerm
	}
	t := &SessionTty{
		session: s,
		term:    term,
		window:  pty.Window,
		stop:    make(chan struct{}),
	}
	go t.follow(winCh)
	return t
}

// Term is the client's TERM value.
func (t *SessionTty) Term() string { return t.term }

func (t *SessionTty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *SessionTty) Write(b []byte) (int, error) { return t.session.Write(b) }

// Close stops resize tracking and closes the session channel.
func (t *SessionTty) Close() error {
	t.once.Do(func() { close(t.stop) })
	return t.session.Close()
}

// Start, Stop and Drain have nothing to do: the channel is raw already.
func (t *SessionTty) Start() error { return nil }
func (t *SessionTty) Stop() error  { return nil }
func (t *SessionTty) Drain() error { return nil }

// WindowSize returns the latest size reported by the client.
func (t *SessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb to run after every window change.
func (t *SessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onResize = cb
	t.mu.Unlock()
}

func (t *SessionTty) follow(winCh <-chan gossh.Window) {
	for {
		select {
		case <-t.stop:
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			t.mu.Lock()
			t.window = win
			cb := t.onResize
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	}
}
