package ai

import (
	"context"
	"errors"
)

// Verdict is a qualitative label attached to a match result.
type Verdict string

const (
	VerdictExcellent      Verdict = "Excellent"
	VerdictStrong         Verdict = "Strong"
	VerdictAverage        Verdict = "Average"
	VerdictWeak           Verdict = "Weak"
	VerdictUnsuitable     Verdict = "Unsuitable"
	VerdictQualified      Verdict = "Qualified"
	VerdictReviewRequired Verdict = "Review Required"
	VerdictIncomplete     Verdict = "Incomplete"
)

// JudgmentVerdicts are the labels a semantic assessor may return.
var JudgmentVerdicts = []Verdict{
	VerdictExcellent,
	VerdictStrong,
	VerdictAverage,
	VerdictWeak,
	VerdictUnsuitable,
}

// Judgment is the structured alignment opinion of a semantic assessor.
// AlignmentScore is expected in 1..50 but is not clamped here.
type Judgment struct {
	AlignmentScore float64 `json:"alignmentScore"`
	Analysis       string  `json:"oneSentenceAnalysis"`
	KeyStrength    string  `json:"keyStrength"`
	Verdict        Verdict `json:"verdict"`
	Raw            string  `json:"-"`
}

// Assessor judges how well a resume fits a job description.
type Assessor interface {
	Assess(ctx context.Context, resumeText, jobText string) (*Judgment, error)
}

// OutcomeKind tells how the semantic step ended.
type OutcomeKind int

const (
	// OutcomeDisabled means no assessor is configured.
	OutcomeDisabled OutcomeKind = iota
	// OutcomeSuccess means the assessor returned a valid judgment.
	OutcomeSuccess
	// OutcomeFailure means the assessor was called and did not produce a judgment.
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of the semantic step: exactly one of Disabled,
// Success(Judgment) or Failure(Err).
type Outcome struct {
	Kind     OutcomeKind
	Judgment *Judgment
	Err      error
}

var errNilJudgment = errors.New("assessor returned no judgment")

func Disabled() Outcome {
	return Outcome{Kind: OutcomeDisabled}
}

// Success wraps a judgment. A nil judgment is reported as a failure.
func Success(j *Judgment) Outcome {
	if j == nil {
		return Failure(errNilJudgment)
	}
	return Outcome{Kind: OutcomeSuccess, Judgment: j}
}

func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}
