package system

import "babilonia/internal/component"

// FindInteractable returns the first agent, in registration order, whose
// character is within talking distance of the player. Distance only decides
// eligibility, never the winner. Returns nil when nobody is close enough.
func FindInteractable(agents []*Agent, player component.Position) *Agent {
	for _, a := range agents {
		if a.IsPlayerNearby(player) {
			return a
		}
	}
	return nil
}
