package ats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreKeywords(t *testing.T) {
	tests := []struct {
		name        string
		resume      []string
		job         []string
		wantBase    int
		wantMatched []string
		wantMissing []string
	}{
		{
			name:        "one of three",
			resume:      []string{"react", "node.js", "mongodb"},
			job:         []string{"react", "express", "docker"},
			wantBase:    17,
			wantMatched: []string{"react"},
			wantMissing: []string{"express", "docker"},
		},
		{
			name:        "empty job",
			resume:      []string{"react", "go"},
			job:         nil,
			wantBase:    EmptyJobBaseScore,
			wantMatched: []string{},
			wantMissing: []string{},
		},
		{
			name:        "empty job and resume",
			wantBase:    EmptyJobBaseScore,
			wantMatched: []string{},
			wantMissing: []string{},
		},
		{
			name:        "all matched",
			resume:      []string{"docker", "go", "aws"},
			job:         []string{"go", "docker"},
			wantBase:    50,
			wantMatched: []string{"go", "docker"},
			wantMissing: []string{},
		},
		{
			name:        "none matched",
			resume:      []string{"php"},
			job:         []string{"go", "rust"},
			wantBase:    0,
			wantMatched: []string{},
			wantMissing: []string{"go", "rust"},
		},
		{
			name:        "half rounds up",
			resume:      []string{"a"},
			job:         []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t"},
			wantBase:    3,
			wantMatched: []string{"a"},
			wantMissing: []string{"b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t"},
		},
		{
			name:        "three of eight",
			resume:      []string{"a", "b", "c"},
			job:         []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			wantBase:    19,
			wantMatched: []string{"a", "b", "c"},
			wantMissing: []string{"d", "e", "f", "g", "h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreKeywords(tt.resume, tt.job)

			assert.Equal(t, tt.wantBase, got.Base)
			assert.Equal(t, tt.wantMatched, got.Matched)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestScoreKeywordsPartitionsJobSkills(t *testing.T) {
	pool := []string{"react", "go", "rust", "aws", "sql", "vue"}

	// every (resume, job) pair of pool subsets
	for rm := 0; rm < 1<<len(pool); rm++ {
		for jm := 1; jm < 1<<len(pool); jm++ {
			resume := subset(pool, rm)
			job := subset(pool, jm)

			got := ScoreKeywords(resume, job)

			assert.Len(t, got.Matched, len(job)-len(got.Missing))
			assert.ElementsMatch(t, job, append(append([]string{}, got.Matched...), got.Missing...))
			for _, m := range got.Matched {
				assert.NotContains(t, got.Missing, m)
				assert.Contains(t, resume, m)
			}
			for _, m := range got.Missing {
				assert.NotContains(t, resume, m)
			}

			want := int(math.Floor(float64(len(got.Matched))/float64(len(job))*KeywordWeight + 0.5))
			assert.Equal(t, want, got.Base)
			assert.GreaterOrEqual(t, got.Base, 0)
			assert.LessOrEqual(t, got.Base, KeywordWeight)
		}
	}
}

func subset(pool []string, mask int) []string {
	out := []string{}
	for i, s := range pool {
		if mask&(1<<i) != 0 {
			out = append(out, s)
		}
	}
	return out
}

func TestBlend(t *testing.T) {
	tests := []struct {
		name         string
		base         int
		contribution float64
		want         int
	}{
		{name: "no contribution", base: 17, contribution: 0, want: 17},
		{name: "fallback bonus", base: 17, contribution: FallbackBonus, want: 27},
		{name: "semantic", base: 40, contribution: 42, want: 82},
		{name: "capped", base: 50, contribution: 60, want: 100},
		{name: "half up", base: 20, contribution: 12.5, want: 33},
		{name: "below half", base: 20, contribution: 12.49, want: 32},
		{name: "just under cap rounds to cap", base: 50, contribution: 49.6, want: 100},
		{name: "negative clamps to zero", base: 0, contribution: -20, want: 0},
		{name: "nan ignored", base: 30, contribution: math.NaN(), want: 30},
		{name: "positive infinity", base: 10, contribution: math.Inf(1), want: 100},
		{name: "negative infinity", base: 10, contribution: math.Inf(-1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Blend(tt.base, tt.contribution))
		})
	}
}

func TestBlendRange(t *testing.T) {
	for base := 0; base <= KeywordWeight; base++ {
		for _, c := range []float64{-100, -0.5, 0, 0.4, 1, 10, 25.5, 50, 1000} {
			got := Blend(base, c)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, MaxScore)
		}
	}
}
