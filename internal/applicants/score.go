// Package applicants scores a directory of resumes against one job and keeps
// track of applicants that were already reviewed.
package applicants

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/devhire-ats/internal/ats"
	"github.com/spigell/devhire-ats/internal/extract"
)

// DefaultConcurrency bounds parallel scoring when no limit is given.
const DefaultConcurrency = 4

// applicantNamespace scopes content-derived applicant ids.
var applicantNamespace = uuid.MustParse("6f1c1f0e-6a53-4c55-9d0e-2f4a4b3c8d21")

var resumeExtensions = []string{".pdf", ".docx", ".txt", ".md"}

// Scorer scores one resume document against a job text.
type Scorer interface {
	Score(ctx context.Context, doc extract.Document, jobText string) ats.Result
}

// ID derives a stable applicant id from the resume content, so a renamed
// file keeps its id.
func ID(content []byte) string {
	return uuid.NewSHA1(applicantNamespace, content).String()
}

// ResumeFiles lists resume files in dir, sorted by name.
func ResumeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read resume dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(resumeExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	slices.Sort(files)
	return files, nil
}

// ScoreAll scores files concurrently, at most limit at a time. Applicants
// keep the order of files. A file that cannot be read aborts the batch.
// Files with identical content share an id, so only the first one is kept.
func ScoreAll(ctx context.Context, scorer Scorer, files []string, jobText string, limit int, logger *zap.Logger) (*Applicants, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	items := make([]*Applicant, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read resume: %w", err)
			}

			result := scorer.Score(ctx, extract.Document{
				Name:   filepath.Base(path),
				Reader: bytes.NewReader(data),
			}, jobText)

			items[i] = &Applicant{ID: ID(data), File: path, Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Applicants{Items: dedupe(items, logger)}, nil
}

func dedupe(items []*Applicant, logger *zap.Logger) []*Applicant {
	first := make(map[string]string, len(items))
	kept := make([]*Applicant, 0, len(items))

	for _, applicant := range items {
		if file, ok := first[applicant.ID]; ok {
			logger.Warn("duplicate resume skipped",
				zap.String("file", applicant.File),
				zap.String("duplicate_of", file),
				zap.String("id", applicant.ID),
			)
			continue
		}
		first[applicant.ID] = applicant.File
		kept = append(kept, applicant)
	}

	return kept
}
