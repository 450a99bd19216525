package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ai"
	"github.com/spigell/devhire-ats/internal/ai/gemini"
	"github.com/spigell/devhire-ats/internal/ats"
	"github.com/spigell/devhire-ats/internal/extract"
	"github.com/spigell/devhire-ats/internal/logger"
	"github.com/spigell/devhire-ats/internal/secrets"
	"github.com/spigell/devhire-ats/internal/skills"
)

func newExtractor(config *Config, log *zap.Logger) *extract.Extractor {
	return extract.NewExtractor(extract.DefaultRegistry(), config.Server.MaxUploadBytes, log)
}

func newScorer(ctx context.Context, config *Config, extractor *extract.Extractor, log *zap.Logger) (*ats.Scorer, error) {
	vocabulary := skills.DefaultVocabulary()
	if path := strings.TrimSpace(config.Scoring.VocabularyFile); path != "" {
		loaded, err := skills.LoadVocabulary(path)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		vocabulary = loaded
		log.Info("custom vocabulary loaded", zap.String("path", path), zap.Int("terms", vocabulary.Len()))
	}

	assessor, err := newAssessor(ctx, config, log)
	if err != nil {
		return nil, fmt.Errorf("building ai assessor: %w", err)
	}

	return ats.NewScorer(vocabulary, extractor, log, ats.WithAssessor(assessor)), nil
}

// newAssessor returns nil without error when semantic scoring is switched off
// or no API key is configured; scoring then runs on keywords only.
func newAssessor(ctx context.Context, config *Config, log *zap.Logger) (ai.Assessor, error) {
	cfg := config.AI
	if !cfg.Enabled {
		log.Info("semantic scoring disabled", zap.String("reason", "ai.enabled is false"))
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if errors.Is(err, secrets.ErrNotConfigured) {
		log.Warn("semantic scoring disabled",
			zap.String("reason", "no api key"),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	aiLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.RequestTimeout, aiLogger)
	if err != nil {
		return nil, err
	}

	budgets := gemini.Budgets{Job: config.Scoring.JobBudget, Resume: config.Scoring.ResumeBudget}
	aiLogger.Info("semantic scoring enabled",
		zap.Int("job_budget", budgets.Job),
		zap.Int("resume_budget", budgets.Resume),
	)

	return gemini.NewAssessor(generator, budgets, cfg.Gemini.MaxLogLength, aiLogger), nil
}

// jobTextFrom reads the job description from a file, through the extractor so
// PDF and DOCX postings work, or takes it inline, then appends requirements.
func jobTextFrom(ctx context.Context, extractor *extract.Extractor, path, inline string, requirements []string) (string, error) {
	description := inline
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open job description: %w", err)
		}
		defer file.Close()

		description = extractor.ExtractText(ctx, extract.Document{Name: filepath.Base(path), Reader: file})
		if description == "" {
			return "", fmt.Errorf("job description %s has no readable text", path)
		}
	}

	text := ats.JobText(description, requirements...)
	if text == "" {
		return "", errors.New("a job description is required (--job or --job-text)")
	}

	return text, nil
}
