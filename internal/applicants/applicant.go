package applicants

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/devhire-ats/internal/ats"
)

// Applicant is one scored resume.
type Applicant struct {
	ID     string     `json:"id"`
	File   string     `json:"file"`
	Result ats.Result `json:"result"`
}

// Name is the resume file name without directories.
func (a *Applicant) Name() string {
	return filepath.Base(a.File)
}

type Applicants struct {
	Items []*Applicant `json:"items"`
}

func (a *Applicants) Len() int {
	return len(a.Items)
}

func (a *Applicants) FindByID(id string) *Applicant {
	for _, applicant := range a.Items {
		if applicant.ID == id {
			return applicant
		}
	}
	return nil
}

// Exclude removes applicants for which drop returns true and returns their ids.
// Order of the remaining applicants is preserved.
func (a *Applicants) Exclude(drop func(*Applicant) bool) []string {
	removed := make([]string, 0)
	a.Items = slices.DeleteFunc(a.Items, func(applicant *Applicant) bool {
		if drop(applicant) {
			removed = append(removed, applicant.ID)
			return true
		}
		return false
	})
	return removed
}

// ExcludeByIDs removes applicants whose id is listed.
func (a *Applicants) ExcludeByIDs(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return a.Exclude(func(applicant *Applicant) bool {
		_, ok := set[applicant.ID]
		return ok
	})
}

// SortByScore orders applicants by score, highest first. Ties keep file name order.
func (a *Applicants) SortByScore() {
	slices.SortStableFunc(a.Items, func(x, y *Applicant) int {
		if x.Result.Score != y.Result.Score {
			return y.Result.Score - x.Result.Score
		}
		return strings.Compare(x.File, y.File)
	})
}

// ReportByVerdict groups applicants by verdict.
func (a *Applicants) ReportByVerdict() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, applicant := range a.Items {
		key := string(applicant.Result.Verdict)
		report[key] = append(report[key], map[string]string{
			"id":           applicant.ID,
			"file":         applicant.Name(),
			"score":        strconv.Itoa(applicant.Result.Score),
			"matched":      strings.Join(applicant.Result.MatchedSkills, ", "),
			"missing":      strings.Join(applicant.Result.MissingSkills, ", "),
			"analysis":     applicant.Result.Analysis,
			"key strength": applicant.Result.KeyStrength,
		})
	}
	return report
}

func (a *Applicants) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "applicants_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return "", err
	}
	return file.Name(), nil
}
