package game

// Mode is the exclusive input mode. Exactly one is active at a time.
type Mode uint8

const (
	ModeRoam Mode = iota
	ModeDialogue
	ModeTutorial
	ModeVictory
)

func (m Mode) String() string {
	switch m {
	case ModeRoam:
		return "roam"
	case ModeDialogue:
		return "dialogue"
	case ModeTutorial:
		return "tutorial"
	case ModeVictory:
		return "victory"
	}
	return "unknown"
}

// Flags are view toggles that sit on top of the mode. Name labels start
// visible.
type Flags struct {
	LabelsVisible bool
	Paused        bool
}

// resolveMode picks the active mode by precedence:
// Victory > Tutorial > Dialogue > Roam.
func resolveMode(victoryOpen, tutorialOpen, dialogueOpen bool) Mode {
	switch {
	case victoryOpen:
		return ModeVictory
	case tutorialOpen:
		return ModeTutorial
	case dialogueOpen:
		return ModeDialogue
	}
	return ModeRoam
}
