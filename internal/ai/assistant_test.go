package ai

import (
	"errors"
	"testing"
)

func TestOutcomeConstructors(t *testing.T) {
	if got := Disabled(); got.Kind != OutcomeDisabled || got.Judgment != nil || got.Err != nil {
		t.Fatalf("unexpected disabled outcome: %+v", got)
	}

	judgment := &Judgment{AlignmentScore: 40, Verdict: VerdictStrong}
	if got := Success(judgment); got.Kind != OutcomeSuccess || got.Judgment != judgment {
		t.Fatalf("unexpected success outcome: %+v", got)
	}

	if got := Success(nil); got.Kind != OutcomeFailure || got.Err == nil {
		t.Fatalf("expected nil judgment to become a failure, got %+v", got)
	}

	boom := errors.New("boom")
	if got := Failure(boom); got.Kind != OutcomeFailure || !errors.Is(got.Err, boom) {
		t.Fatalf("unexpected failure outcome: %+v", got)
	}
}

func TestOutcomeKindString(t *testing.T) {
	cases := map[OutcomeKind]string{
		OutcomeDisabled: "disabled",
		OutcomeSuccess:  "success",
		OutcomeFailure:  "failure",
		OutcomeKind(42): "unknown",
	}

	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
