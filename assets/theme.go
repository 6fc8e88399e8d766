package assets

// Glyphs used for entities that are not in the character roster.
const (
	GlyphPlayer = "👧"
	GlyphTalk   = "💬"
)

// PlayerName is the name of the investigator the player controls.
const PlayerName = "Sophia"
