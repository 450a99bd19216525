package ats

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ai"
	"github.com/spigell/devhire-ats/internal/extract"
	"github.com/spigell/devhire-ats/internal/logger"
	"github.com/spigell/devhire-ats/internal/skills"
)

const (
	analysisMissingContent  = "Could not perform analysis: Missing content."
	analysisKeywordOnly     = "Basic keyword analysis performed. Add server API key for deep semantic insights."
	analysisFallback        = "Semantic match performed based on core technical skill alignment."
	analysisDefaultSemantic = "Deep AI analysis performed."

	// SemanticSkipped marks results where the semantic step never ran
	// because the resume or job text was missing.
	SemanticSkipped = "skipped"

	qualifiedThreshold = 25
	strongThreshold    = 35
)

// Result is the outcome of matching one resume against one job.
type Result struct {
	Score         int        `json:"score"`
	BaseScore     int        `json:"baseScore"`
	MatchedSkills []string   `json:"matchedSkills"`
	MissingSkills []string   `json:"missingSkills"`
	ResumeSkills  []string   `json:"resumeSkills"`
	Analysis      string     `json:"analysis"`
	Verdict       ai.Verdict `json:"verdict"`
	KeyStrength   string     `json:"keyStrength,omitempty"`
	Semantic      string     `json:"semantic"`
}

// TextExtractor turns a document into plain text, returning "" on failure.
type TextExtractor interface {
	ExtractText(ctx context.Context, doc extract.Document) string
}

// Scorer runs the matching pipeline. It holds no per-call state and is safe
// for concurrent use.
type Scorer struct {
	vocabulary skills.Vocabulary
	extractor  TextExtractor
	assessor   ai.Assessor
	logger     *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithAssessor enables semantic scoring. A nil assessor keeps it disabled.
func WithAssessor(a ai.Assessor) Option {
	return func(s *Scorer) {
		s.assessor = a
	}
}

// NewScorer builds a scorer over the given vocabulary. A nil extractor falls
// back to the default document formats.
func NewScorer(vocabulary skills.Vocabulary, extractor TextExtractor, log *zap.Logger, opts ...Option) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	if extractor == nil {
		extractor = extract.NewExtractor(nil, 0, log)
	}

	s := &Scorer{
		vocabulary: vocabulary,
		extractor:  extractor,
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SemanticEnabled reports whether an assessor is configured.
func (s *Scorer) SemanticEnabled() bool {
	return s.assessor != nil
}

// Vocabulary returns the skill vocabulary the scorer matches against.
func (s *Scorer) Vocabulary() skills.Vocabulary {
	return s.vocabulary
}

// Score extracts the resume text and scores it against jobText.
func (s *Scorer) Score(ctx context.Context, doc extract.Document, jobText string) Result {
	resumeText := s.extractor.ExtractText(ctx, doc)
	s.logger.Debug("resume text ready",
		zap.String("file", doc.Name),
		zap.Int("text_length", len(resumeText)),
	)

	return s.ScoreText(ctx, resumeText, jobText)
}

// ScoreText scores already extracted resume text against jobText.
func (s *Scorer) ScoreText(ctx context.Context, resumeText, jobText string) Result {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobText) == "" {
		s.logger.Warn("missing content, analysis skipped",
			zap.Bool("resume_empty", strings.TrimSpace(resumeText) == ""),
			zap.Bool("job_empty", strings.TrimSpace(jobText) == ""),
		)
		return incompleteResult()
	}

	resumeSkills := s.vocabulary.Extract(resumeText)
	jobSkills := s.vocabulary.Extract(jobText)
	keywords := ScoreKeywords(resumeSkills, jobSkills)

	s.logger.Debug("keyword score computed",
		zap.Int("base_score", keywords.Base),
		zap.Strings("job_skills", jobSkills),
		zap.Strings("matched", keywords.Matched),
		zap.Strings("missing", keywords.Missing),
	)

	result := Result{
		BaseScore:     keywords.Base,
		MatchedSkills: keywords.Matched,
		MissingSkills: keywords.Missing,
		ResumeSkills:  resumeSkills,
	}

	outcome := s.assess(ctx, resumeText, jobText)
	result.Semantic = outcome.Kind.String()

	var contribution float64
	switch outcome.Kind {
	case ai.OutcomeSuccess:
		j := outcome.Judgment
		contribution = j.AlignmentScore
		result.Analysis = j.Analysis
		if strings.TrimSpace(result.Analysis) == "" {
			result.Analysis = analysisDefaultSemantic
		}
		result.Verdict = j.Verdict
		if result.Verdict == "" {
			result.Verdict = ai.VerdictAverage
		}
		result.KeyStrength = j.KeyStrength
	case ai.OutcomeFailure:
		s.logger.Warn("semantic assessment failed, using fallback",
			logger.Outcome(result.Semantic),
			zap.Error(outcome.Err),
		)
		contribution = FallbackBonus
		result.Analysis = analysisFallback
		result.Verdict = ai.VerdictAverage
		if keywords.Base > strongThreshold {
			result.Verdict = ai.VerdictStrong
		}
	default:
		result.Analysis = analysisKeywordOnly
		result.Verdict = ai.VerdictReviewRequired
		if keywords.Base > qualifiedThreshold {
			result.Verdict = ai.VerdictQualified
		}
	}

	result.Score = Blend(keywords.Base, contribution)

	s.logger.Debug("match scored",
		logger.Outcome(result.Semantic),
		zap.Int("score", result.Score),
		zap.String("verdict", string(result.Verdict)),
	)

	return result
}

func (s *Scorer) assess(ctx context.Context, resumeText, jobText string) (out ai.Outcome) {
	if s.assessor == nil {
		return ai.Disabled()
	}

	defer func() {
		if r := recover(); r != nil {
			out = ai.Failure(fmt.Errorf("assessor panic: %v", r))
		}
	}()

	judgment, err := s.assessor.Assess(ctx, resumeText, jobText)
	if err != nil {
		return ai.Failure(err)
	}

	return ai.Success(judgment)
}

func incompleteResult() Result {
	return Result{
		MatchedSkills: []string{},
		MissingSkills: []string{},
		ResumeSkills:  []string{},
		Analysis:      analysisMissingContent,
		Verdict:       ai.VerdictIncomplete,
		Semantic:      SemanticSkipped,
	}
}

// JobText composes the text scored for a job: the description followed by
// its requirements, separated by spaces. Blank parts are skipped.
func JobText(description string, requirements ...string) string {
	parts := make([]string, 0, len(requirements)+1)
	for _, p := range append([]string{description}, requirements...) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}
