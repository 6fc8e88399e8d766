package render

import (
	"fmt"
	"strings"

	"babilonia/internal/dialogue"

	"github.com/mattn/go-runewidth"
)

// DialogueView is what the dialogue box shows for one frame.
type DialogueView struct {
	Speaker     string
	Text        string // revealed part of the current page
	Page, Pages int
	Waiting     bool // a line is being fetched
	More        bool // page fully shown, advance to continue
	Ended       bool // the character is done talking
	Composing   bool
	Composer    string
}

// Prompts shown on the last row of the dialogue box.
const (
	promptWaiting = "…"
	promptMore    = "▼ SPAZIO"
	promptEnded   = "✕ SPAZIO per chiudere"
	promptReply   = "INVIO invia · ESC chiudi"
)

// DrawDialogue draws the dialogue box above the HUD.
func (r *Renderer) DrawDialogue(v DialogueView) {
	sw, sh := r.screen.Size()
	bw := min(sw-2, dialogue.DefaultPageWidth+4)
	bh := dialogue.DefaultPageLines + 4
	if bw < 8 || sh < bh+hudRows {
		return
	}
	x0 := (sw - bw) / 2
	y0 := sh - hudRows - bh
	r.drawBox(x0, y0, bw, bh)
	if v.Speaker != "" {
		r.drawText(x0+2, y0, " "+v.Speaker+" ", styleTitle)
	}
	if v.Pages > 1 {
		r.drawText(x0+bw-8, y0+bh-1, pageIndicator(v.Page, v.Pages), styleDim)
	}

	inner := bw - 4
	for i, line := range strings.Split(v.Text, "\n") {
		if i >= dialogue.DefaultPageLines {
			break
		}
		r.drawText(x0+2, y0+1+i, runewidth.Truncate(line, inner, ""), styleText)
	}

	promptY := y0 + bh - 2
	switch {
	case v.Composing:
		r.drawComposer(x0+2, promptY, inner, v.Composer)
		r.drawText(x0+2, y0+bh-1, promptReply, styleDim)
	case v.Waiting:
		r.drawText(x0+2, promptY, promptWaiting, styleDim)
	case v.Ended:
		r.drawText(x0+bw-2-runewidth.StringWidth(promptEnded), promptY, promptEnded, styleAccent)
	case v.More:
		r.drawText(x0+bw-2-runewidth.StringWidth(promptMore), promptY, promptMore, styleAccent)
	}
}

// drawComposer shows the tail of the reply being typed, followed by a cursor.
func (r *Renderer) drawComposer(x, y, w int, text string) {
	line := "> " + text
	if lines := dialogue.Wrap(line, w-1); len(lines) > 0 {
		line = lines[len(lines)-1]
	}
	end := r.drawText(x, y, line, styleAccent)
	r.screen.SetContent(end, y, '▏', nil, styleAccent)
}

func pageIndicator(page, pages int) string {
	return fmt.Sprintf(" %d/%d ", page+1, pages)
}
