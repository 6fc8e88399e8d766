package render

import (
	"sort"

	"babilonia/assets"
	"babilonia/internal/component"
	"babilonia/internal/ecs"
	"babilonia/internal/gamemap"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// hudRows is the number of rows reserved at the bottom for the HUD.
const hudRows = 3

// Renderer draws the game world onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		camera: NewCamera(0, 0, w, max(h-hudRows, 1)),
	}
}

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera { return r.camera }

// CenterOn fits the viewport to the current screen size and recenters the
// camera on world pixel (px, py).
func (r *Renderer) CenterOn(px, py float64) {
	w, h := r.screen.Size()
	r.camera.Resize(w, max(h-hudRows, 1))
	r.camera.CenterPixel(px, py)
}

// FrameOptions selects the optional decorations of a frame.
type FrameOptions struct {
	Labels bool         // draw name labels above characters
	Talk   ecs.EntityID // character the player can talk to, if any
}

// DrawFrame clears the screen and renders tiles and entities.
func (r *Renderer) DrawFrame(w *ecs.World, gmap *gamemap.GameMap, opts FrameOptions) {
	r.screen.Clear()
	r.drawMap(gmap)
	r.drawEntities(w, opts)
}

// Show flushes the frame to the terminal.
func (r *Renderer) Show() { r.screen.Show() }

// drawMap renders the tiles inside the viewport.
func (r *Renderer) drawMap(gmap *gamemap.GameMap) {
	for y := 0; y < gmap.Height; y++ {
		for x := 0; x < gmap.Width; x++ {
			sx, sy, onScreen := r.camera.WorldToScreen(x, y)
			if !onScreen {
				continue
			}
			glyph, ok := TileGlyphs[gmap.At(x, y).Kind]
			if !ok {
				glyph = TileGlyphs[gamemap.TileFloor]
			}
			r.putGlyph(sx, sy, glyph, styleBase)
		}
	}
}

// renderableEntity holds sorting info for entity rendering.
type renderableEntity struct {
	id    ecs.EntityID
	order int
	pos   component.Position
	rend  component.Renderable
}

// drawEntities renders all entities with Renderable + Position, ordered by
// Layer and then by height so lower entities overlap higher ones.
func (r *Renderer) drawEntities(w *ecs.World, opts FrameOptions) {
	ids := w.Query(component.CRenderable, component.CPosition)
	entities := make([]renderableEntity, 0, len(ids))
	for _, id := range ids {
		pos, _ := ecs.Fetch[component.Position](w, id)
		rend, _ := ecs.Fetch[component.Renderable](w, id)
		entities = append(entities, renderableEntity{id: id, order: rend.Layer, pos: pos, rend: rend})
	}
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].order != entities[j].order {
			return entities[i].order < entities[j].order
		}
		return entities[i].pos.Y < entities[j].pos.Y
	})

	for _, e := range entities {
		sx, sy, onScreen := r.camera.PixelToScreen(e.pos.X, e.pos.Y)
		if !onScreen {
			continue
		}
		style := styleBase.Foreground(e.rend.Color)
		r.putGlyph(sx, sy, e.rend.Glyph, style)
		if e.id == opts.Talk {
			r.putGlyph(sx+2, sy-1, assets.GlyphTalk, styleBase)
		}
		if opts.Labels {
			r.drawLabel(w, e.id, sx, sy)
		}
	}
}

// drawLabel centers the entity's name on the row above its glyph.
func (r *Renderer) drawLabel(w *ecs.World, id ecs.EntityID, sx, sy int) {
	var name string
	if npc, ok := ecs.Fetch[component.NPC](w, id); ok {
		name = npc.Name
	} else if w.Has(id, component.CTagPlayer) {
		name = assets.PlayerName
	}
	if name == "" || sy == 0 {
		return
	}
	x := sx + 1 - runewidth.StringWidth(name)/2
	r.drawText(max(x, 0), sy-1, name, styleLabel)
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	mainc := runes[0]
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, mainc, combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

// drawText writes text from (x, y), advancing by each rune's display width.
// Zero-width runes such as variation selectors are dropped. It returns the
// column after the last rune.
func (r *Renderer) drawText(x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		cw := runewidth.RuneWidth(ch)
		if cw == 0 {
			continue
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x += cw
	}
	return x
}

// fill paints a rectangle with spaces.
func (r *Renderer) fill(x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			r.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// drawBox draws a bordered, filled rectangle.
func (r *Renderer) drawBox(x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	r.fill(x, y, w, h, styleBase)
	for col := x + 1; col < x+w-1; col++ {
		r.screen.SetContent(col, y, '─', nil, styleBorder)
		r.screen.SetContent(col, y+h-1, '─', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		r.screen.SetContent(x, row, '│', nil, styleBorder)
		r.screen.SetContent(x+w-1, row, '│', nil, styleBorder)
	}
	r.screen.SetContent(x, y, '╭', nil, styleBorder)
	r.screen.SetContent(x+w-1, y, '╮', nil, styleBorder)
	r.screen.SetContent(x, y+h-1, '╰', nil, styleBorder)
	r.screen.SetContent(x+w-1, y+h-1, '╯', nil, styleBorder)
}

// drawCentered writes text centered between x and x+w. It returns the
// column the text starts at.
func (r *Renderer) drawCentered(x, y, w int, text string, style tcell.Style) int {
	text = runewidth.Truncate(text, w, "…")
	start := x + (w-runewidth.StringWidth(text))/2
	r.drawText(start, y, text, style)
	return start
}
