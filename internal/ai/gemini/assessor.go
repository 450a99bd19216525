package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ai"
	"github.com/spigell/devhire-ats/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

//go:embed judgment.schema.json
var judgmentSchemaJSON string

const (
	defaultMaxLogLength = 200
	DefaultJobBudget    = 1500
	DefaultResumeBudget = 3000
)

var judgmentSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(judgmentSchemaJSON))
})

// Budgets caps how many runes of each input are sent to the model.
type Budgets struct {
	Job    int
	Resume int
}

// Assessor asks Gemini for a structured resume/job alignment judgment.
type Assessor struct {
	generator contentGenerator
	budgets   Budgets
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Assessor = (*Assessor)(nil)

func NewAssessor(generator contentGenerator, budgets Budgets, maxLogLength int, logger *zap.Logger) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if budgets.Job <= 0 {
		budgets.Job = DefaultJobBudget
	}
	if budgets.Resume <= 0 {
		budgets.Resume = DefaultResumeBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		budgets:   budgets,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assessor) Assess(ctx context.Context, resumeText, jobText string) (*ai.Judgment, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.New("resume text is required")
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, errors.New("job text is required")
	}

	prompt := buildPrompt(
		utils.Head(resumeText, a.budgets.Resume),
		utils.Head(jobText, a.budgets.Job),
	)

	a.logger.Debug("gemini assess request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini assess response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	judgment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	judgment.Raw = raw
	return judgment, nil
}

func buildPrompt(resumeText, jobText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_TEXT}}\n\nResume:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}

	// single pass so placeholders inside the inputs are left alone
	return strings.NewReplacer(
		"{{JOB_TEXT}}", jobText,
		"{{RESUME_TEXT}}", resumeText,
	).Replace(template)
}

type judgmentPayload struct {
	AlignmentScore float64 `mapstructure:"alignmentScore"`
	Analysis       string  `mapstructure:"oneSentenceAnalysis"`
	KeyStrength    string  `mapstructure:"keyStrength"`
	Verdict        string  `mapstructure:"verdict"`
}

func parseResponse(raw string) (*ai.Judgment, error) {
	cleaned := extractJSON(raw)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	schema, err := judgmentSchema()
	if err != nil {
		return nil, fmt.Errorf("load judgment schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate gemini response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid gemini response: %s", strings.Join(problems, "; "))
	}

	var payload judgmentPayload
	if err := mapstructure.Decode(data, &payload); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	return &ai.Judgment{
		AlignmentScore: payload.AlignmentScore,
		Analysis:       strings.TrimSpace(payload.Analysis),
		KeyStrength:    strings.TrimSpace(payload.KeyStrength),
		Verdict:        ai.Verdict(payload.Verdict),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
