package race

import "math"

// PositionMultiplier returns the reward weight for a finishing position.
// The table decreases monotonically; fourth place and beyond share a floor.
func PositionMultiplier(position int) float64 {
	switch position {
	case 1:
		return 1.0
	case 2:
		return 0.5
	case 3:
		return 0.33
	default:
		return 0.25
	}
}

// Reward converts a finished race into experience: a participation base plus
// a position-weighted share of the characters typed, never less than one
// point for the typing itself.
func Reward(charsTyped, position, base int) int {
	earned := int(math.Floor(float64(charsTyped) * PositionMultiplier(position)))
	if earned < 1 {
		earned = 1
	}
	return base + earned
}
