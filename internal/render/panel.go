package render

import (
	"fmt"
	"strings"
	"unicode"

	"babilonia/internal/dialogue"
	"babilonia/internal/overlay"

	"github.com/mattn/go-runewidth"
)

// maxPanelWidth caps overlay panels on wide terminals.
const maxPanelWidth = 60

// Hitbox is a clickable screen rectangle belonging to an overlay button.
type Hitbox struct {
	X, Y, W, H int
	Button     string
}

// Contains reports whether screen cell (x, y) is inside the box.
func (h Hitbox) Contains(x, y int) bool {
	return x >= h.X && x < h.X+h.W && y >= h.Y && y < h.Y+h.H
}

// HitTest returns the overlay target under screen cell (x, y).
func HitTest(boxes []Hitbox, x, y int) overlay.Target {
	for _, b := range boxes {
		if b.Contains(x, y) {
			return overlay.ButtonTarget(b.Button)
		}
	}
	return overlay.Background
}

type panelRow struct {
	text    string
	style   styleKind
	buttons []overlay.Button
}

type styleKind uint8

const (
	rowText styleKind = iota
	rowTitle
	rowSubtitle
	rowPrompt
	rowButtons
)

// DrawOverlay draws page as a centered panel and returns the hitboxes of its
// buttons.
func (r *Renderer) DrawOverlay(page overlay.Page, index, total int) []Hitbox {
	sw, sh := r.screen.Size()
	pw := min(sw-2, maxPanelWidth)
	if pw < 10 || sh < 5 {
		return nil
	}
	inner := pw - 4

	var head, body, tail []panelRow
	head = append(head, panelRow{text: page.Title, style: rowTitle})
	if page.Subtitle != "" {
		head = append(head, panelRow{text: page.Subtitle, style: rowSubtitle})
	}
	head = append(head, panelRow{})
	for _, line := range dialogue.Wrap(page.Body, inner) {
		body = append(body, panelRow{text: line})
	}
	tail = append(tail, panelRow{})
	if len(page.Buttons) > 0 {
		tail = append(tail, panelRow{style: rowButtons, buttons: page.Buttons})
	}
	if page.Prompt != "" {
		tail = append(tail, panelRow{text: page.Prompt, style: rowPrompt})
	}
	if room := sh - 2 - len(head) - len(tail); len(body) > room {
		body = body[:max(room, 0)]
	}
	rows := append(append(head, body...), tail...)

	ph := len(rows) + 2
	x0 := (sw - pw) / 2
	y0 := max((sh-ph)/2, 0)
	r.drawBox(x0, y0, pw, ph)
	if total > 1 {
		r.drawText(x0+pw-8, y0+ph-1, pageIndicator(index, total), styleDim)
	}

	var boxes []Hitbox
	for i, row := range rows {
		y := y0 + 1 + i
		switch row.style {
		case rowTitle:
			r.drawCentered(x0+2, y, inner, row.text, styleTitle)
		case rowSubtitle:
			r.drawCentered(x0+2, y, inner, row.text, styleAccent)
		case rowPrompt:
			r.drawCentered(x0+2, y, inner, row.text, styleDim)
		case rowButtons:
			boxes = append(boxes, r.drawButtons(x0+2, y, inner, row.buttons)...)
		default:
			r.drawText(x0+2, y, runewidth.Truncate(row.text, inner, ""), styleText)
		}
	}
	return boxes
}

// drawButtons lays buttons out centered on one row.
func (r *Renderer) drawButtons(x, y, w int, buttons []overlay.Button) []Hitbox {
	labels := make([]string, len(buttons))
	total := 0
	for i, b := range buttons {
		labels[i] = buttonLabel(b)
		total += runewidth.StringWidth(labels[i])
	}
	total += 2 * (len(buttons) - 1)
	col := x + max((w-total)/2, 0)

	boxes := make([]Hitbox, 0, len(buttons))
	for i, b := range buttons {
		lw := runewidth.StringWidth(labels[i])
		r.fill(col, y, lw, 1, styleButton)
		r.drawText(col, y, labels[i], styleButton)
		boxes = append(boxes, Hitbox{X: col, Y: y, W: lw, H: 1, Button: b.ID})
		col += lw + 2
	}
	return boxes
}

func buttonLabel(b overlay.Button) string {
	if b.Hotkey == 0 {
		return " " + b.Label + " "
	}
	return fmt.Sprintf(" %s [%c] ", b.Label, unicode.ToUpper(b.Hotkey))
}

// DrawPause draws the pause menu with item sel highlighted.
func (r *Renderer) DrawPause(title string, items []string, sel int) {
	sw, sh := r.screen.Size()
	w := runewidth.StringWidth(title)
	for _, it := range items {
		w = max(w, runewidth.StringWidth(it))
	}
	pw := min(w+8, sw)
	ph := len(items) + 4
	x0 := (sw - pw) / 2
	y0 := max((sh-ph)/2, 0)
	r.drawBox(x0, y0, pw, ph)
	r.drawCentered(x0+1, y0+1, pw-2, title, styleTitle)
	for i, it := range items {
		style := styleText
		text := "  " + it
		if i == sel {
			style = styleSelect
			text = "▸ " + it
		}
		text += strings.Repeat(" ", max(pw-4-runewidth.StringWidth(text), 0))
		r.drawText(x0+2, y0+3+i, text, style)
	}
}
