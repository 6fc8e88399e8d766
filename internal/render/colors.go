package render

import (
	"babilonia/internal/gamemap"

	"github.com/gdamore/tcell/v2"
)

// TileGlyphs maps each terrain kind to its emoji. Emoji are drawn by the
// terminal with their own colors, so kinds are told apart by glyph alone.
var TileGlyphs = map[gamemap.TileKind]string{
	gamemap.TileWall:  "🧱",
	gamemap.TileFloor: "🟫",
	gamemap.TileGrass: "🟩",
	gamemap.TileWater: "🟦",
	gamemap.TileTree:  "🌳",
	gamemap.TileDoor:  "🚪",
}

var (
	styleBase   = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleText   = styleBase.Foreground(tcell.ColorWhite)
	styleDim    = styleBase.Foreground(tcell.ColorGray)
	styleTitle  = styleBase.Foreground(tcell.ColorGold).Bold(true)
	styleAccent = styleBase.Foreground(tcell.ColorLightYellow)
	styleLabel  = styleBase.Foreground(tcell.ColorLightCyan)
	styleButton = tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite).Bold(true)
	styleSelect = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleBorder = styleBase.Foreground(tcell.ColorTan)
)
