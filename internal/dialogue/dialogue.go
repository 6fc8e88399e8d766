// Package dialogue runs conversations between the player and a character.
// Content comes from a Provider; the Controller only sequences what the
// player sees.
package dialogue

import (
	"context"
	"errors"
	"slices"
	"strings"

	"babilonia/internal/component"

	"github.com/mattn/go-runewidth"
)

// Event is a domain signal carried alongside a line of dialogue.
type Event string

// EventVictory fires when the player names the culprit.
const EventVictory Event = "victory"

// victoryMarker is what the conversation service embeds in a reply when the
// mystery has been solved.
const victoryMarker = "VICTORY_TRIGGERED"

var (
	// ErrNeedReply is returned by Conversation.Next when the character is
	// waiting for the player to say something.
	ErrNeedReply = errors.New("character is waiting for a reply")
	// ErrService is returned when the conversation service reports a failure.
	ErrService = errors.New("conversation service error")
	// ErrClosed is returned by a conversation used after Close.
	ErrClosed = errors.New("conversation closed")
)

// Line is one thing a character says.
type Line struct {
	Text   string
	Events []Event
	// End means the character has nothing more to say; the next advance
	// closes the conversation.
	End bool
	// Await means the character expects the player to answer after this line.
	Await bool
}

// Conversation is an open exchange with one character.
type Conversation interface {
	// Next returns the character's next line, or ErrNeedReply.
	Next(ctx context.Context) (Line, error)
	// Reply sends the player's message; the answer is returned by Next.
	Reply(ctx context.Context, msg string) error
	Close() error
}

// Provider opens conversations.
type Provider interface {
	Open(ctx context.Context, npc component.NPC) (Conversation, error)
}

// extractEvents strips the victory marker from text and collects the events
// it and the optional explicit event name stand for.
func extractEvents(text, explicit string) (string, []Event) {
	var events []Event
	if strings.Contains(text, victoryMarker) {
		text = strings.TrimSpace(strings.ReplaceAll(text, victoryMarker, ""))
		events = append(events, EventVictory)
	}
	if explicit != "" && !slices.Contains(events, Event(explicit)) {
		events = append(events, Event(explicit))
	}
	return text, events
}

// Wrap breaks text into lines no wider than width terminal columns.
// Existing newlines are kept; words longer than width are split.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line, lineW := "", 0
		for _, word := range words {
			ww := runewidth.StringWidth(word)
			for ww > width {
				if line != "" {
					out = append(out, line)
					line, lineW = "", 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// A single glyph wider than the line; emit it alone.
					r := []rune(word)
					head = string(r[0])
				}
				out = append(out, head)
				word = word[len(head):]
				ww = runewidth.StringWidth(word)
			}
			if word == "" {
				continue
			}
			switch {
			case line == "":
				line, lineW = word, ww
			case lineW+1+ww <= width:
				line += " " + word
				lineW += 1 + ww
			default:
				out = append(out, line)
				line, lineW = word, ww
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Paginate wraps text and groups the lines into pages of at most height
// lines. Every page is joined with newlines.
func Paginate(text string, width, height int) []string {
	if height < 1 {
		height = 1
	}
	lines := Wrap(text, width)
	var pages []string
	for len(lines) > 0 {
		n := min(height, len(lines))
		pages = append(pages, strings.Join(lines[:n], "\n"))
		lines = lines[n:]
	}
	if len(pages) == 0 {
		pages = []string{""}
	}
	return pages
}
