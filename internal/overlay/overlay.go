// Package overlay sequences paged modal screens such as the tutorial and
// the victory credits.
package overlay

// Trigger decides what an ambient click does on a page.
type Trigger uint8

const (
	// ClickAnywhere pages advance (or, when last, close) on any click.
	ClickAnywhere Trigger = iota
	// ButtonOnly pages ignore ambient clicks on the last page; only a
	// button ends the sequence.
	ButtonOnly
)

// Button is an explicit action on a page.
type Button struct {
	ID     string
	Label  string
	Hotkey rune
}

// Page is one screen of a sequence.
type Page struct {
	Title    string
	Subtitle string
	Body     string
	Prompt   string
	Trigger  Trigger
	Buttons  []Button
}

// Target is what a click landed on: the background or a named button.
type Target struct {
	Button string
}

// Background is a click that hit no button.
var Background = Target{}

// ButtonTarget is a click on the button with the given id.
func ButtonTarget(id string) Target { return Target{Button: id} }

// Sequencer walks a fixed list of pages. The index is always within bounds
// while the sequence is open.
type Sequencer struct {
	pages []Page
	index int
	open  bool

	// OnClose runs after the sequence closes.
	OnClose func()
	// OnButton runs when a button on the current page is activated.
	OnButton func(id string)
}

// New returns a closed sequencer over pages.
func New(pages []Page) *Sequencer {
	return &Sequencer{pages: append([]Page(nil), pages...)}
}

// Open shows the first page. Opening an empty sequence does nothing.
func (s *Sequencer) Open() {
	if len(s.pages) == 0 {
		return
	}
	s.index = 0
	s.open = true
}

// IsOpen reports whether a page is showing.
func (s *Sequencer) IsOpen() bool { return s.open }

// Index returns the 0-based index of the current page.
func (s *Sequencer) Index() int { return s.index }

// Len returns the number of pages.
func (s *Sequencer) Len() int { return len(s.pages) }

// Current returns the page being shown.
func (s *Sequencer) Current() (Page, bool) {
	if !s.open {
		return Page{}, false
	}
	return s.pages[s.index], true
}

// Last reports whether the current page is the final one.
func (s *Sequencer) Last() bool { return s.index == len(s.pages)-1 }

// Next handles an ambient click: advance, close on a ClickAnywhere last
// page, or ignore on a ButtonOnly last page.
func (s *Sequencer) Next() {
	if !s.open {
		return
	}
	if !s.Last() {
		s.index++
		return
	}
	if s.pages[s.index].Trigger == ClickAnywhere {
		s.Close()
	}
}

// Click routes a pointer press. Clicks on buttons that are not on the
// current page are treated as background clicks.
func (s *Sequencer) Click(t Target) {
	if !s.open {
		return
	}
	if t.Button != "" && s.hasButton(t.Button) {
		if s.OnButton != nil {
			s.OnButton(t.Button)
		}
		return
	}
	s.Next()
}

// Hotkey returns the button on the current page bound to r.
func (s *Sequencer) Hotkey(r rune) (Target, bool) {
	page, ok := s.Current()
	if !ok {
		return Target{}, false
	}
	for _, b := range page.Buttons {
		if b.Hotkey != 0 && b.Hotkey == r {
			return ButtonTarget(b.ID), true
		}
	}
	return Target{}, false
}

// Close hides the sequence and fires OnClose. Closing a closed sequence
// does nothing.
func (s *Sequencer) Close() {
	if !s.open {
		return
	}
	s.open = false
	s.index = 0
	if s.OnClose != nil {
		s.OnClose()
	}
}

func (s *Sequencer) hasButton(id string) bool {
	for _, b := range s.pages[s.index].Buttons {
		if b.ID == id {
			return true
		}
	}
	return false
}
