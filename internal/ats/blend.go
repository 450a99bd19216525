package ats

import "math"

// Blend adds the semantic contribution to the base score and returns an
// integer in [0, MaxScore].
func Blend(base int, contribution float64) int {
	if math.IsNaN(contribution) {
		contribution = 0
	}

	total := math.Min(float64(base)+contribution, MaxScore)
	if total < 0 {
		return 0
	}

	return roundHalfUp(total)
}
