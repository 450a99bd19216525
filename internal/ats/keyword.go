// Package ats computes resume to job match results.
//
// A result blends a keyword overlap score (up to KeywordWeight points) with an
// optional semantic judgment. Every scoring path yields a valid Result.
package ats

import "math"

const (
	// KeywordWeight is the share of the final score earned by keyword overlap.
	KeywordWeight = 50
	// EmptyJobBaseScore is the base score when the job names no known skills.
	EmptyJobBaseScore = 25
	// FallbackBonus is added when the semantic assessor fails.
	FallbackBonus = 10
	// MaxScore caps the final score.
	MaxScore = 100
)

// KeywordScore is the keyword overlap between a resume and a job.
type KeywordScore struct {
	Base    int
	Matched []string
	Missing []string
}

// ScoreKeywords splits jobSkills into matched and missing, keeping job order,
// and computes the base score.
func ScoreKeywords(resumeSkills, jobSkills []string) KeywordScore {
	have := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		have[s] = struct{}{}
	}

	score := KeywordScore{
		Matched: make([]string, 0, len(jobSkills)),
		Missing: make([]string, 0, len(jobSkills)),
	}
	for _, s := range jobSkills {
		if _, ok := have[s]; ok {
			score.Matched = append(score.Matched, s)
		} else {
			score.Missing = append(score.Missing, s)
		}
	}

	if len(jobSkills) == 0 {
		score.Base = EmptyJobBaseScore
		return score
	}

	ratio := float64(len(score.Matched)) / float64(len(jobSkills))
	score.Base = min(roundHalfUp(ratio*KeywordWeight), KeywordWeight)

	return score
}

// roundHalfUp rounds like JavaScript Math.round: halves go towards +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
