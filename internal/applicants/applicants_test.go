package applicants

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/devhire-ats/internal/ai"
	"github.com/spigell/devhire-ats/internal/ats"
	"github.com/spigell/devhire-ats/internal/extract"
	"github.com/spigell/devhire-ats/internal/skills"
)

func sample() *Applicants {
	return &Applicants{Items: []*Applicant{
		{ID: "a", File: "/cv/alice.pdf", Result: ats.Result{Score: 40, Verdict: ai.VerdictQualified, MatchedSkills: []string{"go"}}},
		{ID: "b", File: "/cv/bob.txt", Result: ats.Result{Score: 72, Verdict: ai.VerdictStrong}},
		{ID: "c", File: "/cv/carol.docx", Result: ats.Result{Score: 40, Verdict: ai.VerdictQualified}},
		{ID: "d", File: "/cv/dave.md", Result: ats.Result{Score: 0, Verdict: ai.VerdictIncomplete}},
	}}
}

func ids(a *Applicants) []string {
	out := make([]string, 0, a.Len())
	for _, item := range a.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestSortByScore(t *testing.T) {
	a := sample()
	a.SortByScore()

	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(a))
}

func TestExcludeByIDs(t *testing.T) {
	a := sample()

	removed := a.ExcludeByIDs([]string{"c", "zzz", "a"})

	assert.Equal(t, []string{"a", "c"}, removed)
	assert.Equal(t, []string{"b", "d"}, ids(a))
	assert.Nil(t, a.FindByID("a"))
	require.NotNil(t, a.FindByID("d"))
	assert.Equal(t, "dave.md", a.FindByID("d").Name())
}

func TestReportByVerdict(t *testing.T) {
	report := sample().ReportByVerdict()

	require.Len(t, report["Qualified"], 2)
	assert.Equal(t, "alice.pdf", report["Qualified"][0]["file"])
	assert.Equal(t, "40", report["Qualified"][0]["score"])
	assert.Equal(t, "go", report["Qualified"][0]["matched"])
	assert.Len(t, report["Strong"], 1)
	assert.Len(t, report["Incomplete"], 1)
}

func TestDumpToTmpFile(t *testing.T) {
	path, err := sample().DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Applicants
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4, decoded.Len())
	assert.Equal(t, 72, decoded.FindByID("b").Result.Score)
}

func TestExcludeFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	empty, err := GetExcludedFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, empty.IDs())

	excluded := sample().ToExcluded()
	require.NoError(t, excluded.ToFile(path))

	// a shorter rewrite must not leave stale bytes behind
	short := &Excluded{Items: excluded.Items[:1]}
	require.NoError(t, short.ToFile(path))

	loaded, err := GetExcludedFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded.IDs())
	assert.Equal(t, "alice.pdf", loaded.Items[0].File)
	assert.WithinDuration(t, time.Now(), loaded.Items[0].ExcludedAt, time.Minute)

	loaded.Append(&Excluded{Items: []*ExcludedApplicant{{ID: "x"}}})
	assert.Equal(t, []string{"a", "x"}, loaded.IDs())
}

func TestGetExcludedFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	emptyPath := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	got, err := GetExcludedFromFile(emptyPath)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	brokenPath := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(brokenPath, []byte("{not json"), 0o644))
	_, err = GetExcludedFromFile(brokenPath)
	assert.Error(t, err)
}

func TestResumeFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.TXT", "a.pdf", "notes.png", "c.docx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	files, err := ResumeFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.TXT"),
		filepath.Join(dir, "c.docx"),
	}, files)

	_, err = ResumeFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

type countingScorer struct {
	inner   *ats.Scorer
	running atomic.Int32
	peak    atomic.Int32
}

func (c *countingScorer) Score(ctx context.Context, doc extract.Document, jobText string) ats.Result {
	n := c.running.Add(1)
	defer c.running.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return c.inner.Score(ctx, doc, jobText)
}

func TestScoreAll(t *testing.T) {
	dir := t.TempDir()
	contents := map[string]string{
		"alice.txt": "Go and Docker",
		"bob.txt":   "React only",
		"carol.txt": "Go, Docker, Kubernetes",
		"empty.txt": "",
		"same.txt":  "React only",
	}
	for name, body := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	files, err := ResumeFiles(dir)
	require.NoError(t, err)

	scorer := &countingScorer{
		inner: ats.NewScorer(skills.NewVocabulary("go", "docker", "kubernetes", "react"), nil, zap.NewNop()),
	}

	core, logs := observer.New(zapcore.WarnLevel)

	got, err := ScoreAll(context.Background(), scorer, files, "go docker kubernetes", 2, zap.New(core))
	require.NoError(t, err)

	// same.txt repeats bob.txt and is dropped.
	want := slices.DeleteFunc(slices.Clone(files), func(f string) bool { return filepath.Base(f) == "same.txt" })
	require.Equal(t, len(want), got.Len())
	for i, applicant := range got.Items {
		assert.Equal(t, want[i], applicant.File)
		assert.NotEmpty(t, applicant.ID)
	}

	entries := logs.FilterMessage("duplicate resume skipped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(dir, "same.txt"), entries[0].ContextMap()["file"])
	assert.Equal(t, filepath.Join(dir, "bob.txt"), entries[0].ContextMap()["duplicate_of"])
	assert.LessOrEqual(t, scorer.peak.Load(), int32(2))

	byName := map[string]*Applicant{}
	for _, applicant := range got.Items {
		byName[applicant.Name()] = applicant
	}
	assert.Equal(t, 50, byName["carol.txt"].Result.Score)
	assert.Equal(t, 33, byName["alice.txt"].Result.Score)
	assert.Equal(t, 0, byName["bob.txt"].Result.Score)
	assert.Equal(t, ai.VerdictIncomplete, byName["empty.txt"].Result.Verdict)
	assert.NotContains(t, byName, "same.txt")
	assert.NotEqual(t, byName["alice.txt"].ID, byName["bob.txt"].ID)

	got.SortByScore()
	assert.Equal(t, "carol.txt", got.Items[0].Name())
}

func TestScoreAllMissingFile(t *testing.T) {
	scorer := ats.NewScorer(skills.DefaultVocabulary(), nil, zap.NewNop())

	_, err := ScoreAll(context.Background(), scorer, []string{filepath.Join(t.TempDir(), "gone.txt")}, "go", 0, zap.NewNop())
	assert.Error(t, err)
}
