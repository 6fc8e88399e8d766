package game

import (
	"babilonia/internal/component"
	"babilonia/internal/system"

	"github.com/gdamore/tcell/v2"
)

// CommandKind identifies one input command.
type CommandKind uint8

const (
	CmdNone      CommandKind = iota
	CmdMove                  // Dir is set; Rune too when typed as a letter
	CmdInteract              // space
	CmdConfirm               // enter
	CmdCancel                // esc
	CmdBackspace             // delete the last composed rune
	CmdRune                  // any other printable key
	CmdClick                 // primary button pressed at X, Y
	CmdQuit                  // ctrl-c
	CmdResize
)

// Command is one input edge.
type Command struct {
	Kind CommandKind
	Dir  component.Direction
	Rune rune
	X, Y int
}

// InputFrame is the input gathered between two ticks, in arrival order.
type InputFrame struct {
	Commands []Command
}

// Heading sums the movement commands of the frame into a held direction.
func (f InputFrame) Heading() system.Heading {
	var h system.Heading
	for _, c := range f.Commands {
		if c.Kind != CmdMove {
			continue
		}
		dx, dy := c.Dir.Delta()
		h.DX += int(dx)
		h.DY += int(dy)
	}
	h.DX = max(-1, min(1, h.DX))
	h.DY = max(-1, min(1, h.DY))
	return h
}

// Has reports whether the frame contains a command of kind k.
func (f InputFrame) Has(k CommandKind) bool {
	for _, c := range f.Commands {
		if c.Kind == k {
			return true
		}
	}
	return false
}

// Input turns tcell events into commands. Mouse presses are reported once,
// on the edge where the primary button goes down.
type Input struct {
	frame     InputFrame
	mouseDown bool
}

// Add records ev.
func (in *Input) Add(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if cmd, ok := keyToCommand(ev); ok {
			in.frame.Commands = append(in.frame.Commands, cmd)
		}
	case *tcell.EventMouse:
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !in.mouseDown {
			x, y := ev.Position()
			in.frame.Commands = append(in.frame.Commands, Command{Kind: CmdClick, X: x, Y: y})
		}
		in.mouseDown = down
	case *tcell.EventResize:
		in.frame.Commands = append(in.frame.Commands, Command{Kind: CmdResize})
	}
}

// Take returns the commands recorded since the last call.
func (in *Input) Take() InputFrame {
	f := in.frame
	in.frame = InputFrame{}
	return f
}

// keyToCommand maps a tcell key event to a command.
func keyToCommand(ev *tcell.EventKey) (Command, bool) {
	// Named keys.
	switch ev.Key() {
	case tcell.KeyUp:
		return Command{Kind: CmdMove, Dir: component.DirBack}, true
	case tcell.KeyDown:
		return Command{Kind: CmdMove, Dir: component.DirFront}, true
	case tcell.KeyRight:
		return Command{Kind: CmdMove, Dir: component.DirRight}, true
	case tcell.KeyLeft:
		return Command{Kind: CmdMove, Dir: component.DirLeft}, true
	case tcell.KeyEnter:
		return Command{Kind: CmdConfirm}, true
	case tcell.KeyEscape:
		return Command{Kind: CmdCancel}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Command{Kind: CmdBackspace}, true
	case tcell.KeyCtrlC:
		return Command{Kind: CmdQuit}, true
	case tcell.KeyRune:
	default:
		return Command{}, false
	}

	// Rune keys. Letters keep their rune so they can be typed into a reply.
	r := ev.Rune()
	switch r {
	case ' ':
		return Command{Kind: CmdInteract, Rune: r}, true
	case 'k':
		return Command{Kind: CmdMove, Dir: component.DirBack, Rune: r}, true
	case 'j':
		return Command{Kind: CmdMove, Dir: component.DirFront, Rune: r}, true
	case 'l':
		return Command{Kind: CmdMove, Dir: component.DirRight, Rune: r}, true
	case 'h':
		return Command{Kind: CmdMove, Dir: component.DirLeft, Rune: r}, true
	}
	return Command{Kind: CmdRune, Rune: r}, true
}
