package screening

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ai"
	"github.com/spigell/devhire-ats/internal/applicants"
	"github.com/spigell/devhire-ats/internal/ats"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes applicants listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, a *applicants.Applicants) (*applicants.Applicants, Step, error) {
	initial := a.Len()
	if f.path == "" {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	excluded, err := applicants.GetExcludedFromFile(f.path)
	if err != nil {
		return a, Step{}, fmt.Errorf("getting excluded applicants from file: %w", err)
	}

	removed := a.ExcludeByIDs(excluded.IDs())
	if len(removed) > 0 {
		deps.Logger.Info("excluding applicants based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_applicants", removed),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(removed), Left: a.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type incompleteFilter struct {
	toggle
	keep bool
}

// NewIncomplete creates a filter that removes applicants whose resume could not be analyzed.
func NewIncomplete() Filter {
	return &incompleteFilter{}
}

func (f *incompleteFilter) Name() string { return "incomplete" }

func (f *incompleteFilter) Validate(cfg *Config) error {
	f.keep = cfg != nil && cfg.KeepIncomplete
	return nil
}

func (f *incompleteFilter) Apply(_ context.Context, deps Deps, a *applicants.Applicants) (*applicants.Applicants, Step, error) {
	initial := a.Len()
	if f.keep {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	removed := a.Exclude(func(applicant *applicants.Applicant) bool {
		return applicant.Result.Verdict == ai.VerdictIncomplete
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding applicants with unreadable resumes",
			zap.Strings("excluded_applicants", removed),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(removed), Left: a.Len()}, nil
}

func (f *incompleteFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"keep_incomplete": strconv.FormatBool(f.keep)},
	}
}

type minScoreFilter struct {
	toggle
	min int
}

// NewMinScore creates a filter that removes applicants scoring below the configured minimum.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg != nil {
		f.min = cfg.MinScore
	}
	if f.min < 0 || f.min > ats.MaxScore {
		return fmt.Errorf("minimum score must be within 0..%d, got %d", ats.MaxScore, f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, a *applicants.Applicants) (*applicants.Applicants, Step, error) {
	initial := a.Len()
	if f.min == 0 {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	removed := a.Exclude(func(applicant *applicants.Applicant) bool {
		return applicant.Result.Score < f.min
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding applicants below minimum score",
			zap.Int("min_score", f.min),
			zap.Strings("excluded_applicants", removed),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(removed), Left: a.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.Itoa(f.min)},
	}
}

type requiredSkillsFilter struct {
	toggle
	skills []string
}

// NewRequiredSkills creates a filter that removes applicants missing any required skill.
func NewRequiredSkills() Filter {
	return &requiredSkillsFilter{}
}

func (f *requiredSkillsFilter) Name() string { return "required_skills" }

func (f *requiredSkillsFilter) Validate(cfg *Config) error {
	f.skills = nil
	if cfg == nil {
		return nil
	}
	var unknown []string
	for _, skill := range cfg.RequiredSkills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if cfg.Vocabulary.Len() > 0 && !cfg.Vocabulary.Contains(skill) {
			unknown = append(unknown, skill)
			continue
		}
		f.skills = append(f.skills, skill)
	}
	if len(unknown) > 0 {
		f.skills = nil
		return fmt.Errorf("required skills not in the scoring vocabulary: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func (f *requiredSkillsFilter) Apply(_ context.Context, deps Deps, a *applicants.Applicants) (*applicants.Applicants, Step, error) {
	initial := a.Len()
	if len(f.skills) == 0 {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	removed := a.Exclude(func(applicant *applicants.Applicant) bool {
		for _, skill := range f.skills {
			if !slices.Contains(applicant.Result.ResumeSkills, skill) {
				return true
			}
		}
		return false
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding applicants missing required skills",
			zap.Strings("required_skills", f.skills),
			zap.Strings("excluded_applicants", removed),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(removed), Left: a.Len()}, nil
}

func (f *requiredSkillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["required_skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
