package applicants

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// Excluded is the content of an exclude file: applicants already reviewed.
type Excluded struct {
	Items []*ExcludedApplicant
}

type ExcludedApplicant struct {
	ID         string
	File       string
	Score      int
	ExcludedAt time.Time
}

func (a *Applicants) ToExcluded() *Excluded {
	excluded := &Excluded{}
	for _, applicant := range a.Items {
		excluded.Items = append(excluded.Items, &ExcludedApplicant{
			ID:         applicant.ID,
			File:       applicant.Name(),
			Score:      applicant.Result.Score,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file yields an
// empty list.
func GetExcludedFromFile(path string) (*Excluded, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Excluded{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *Excluded) Append(other *Excluded) {
	e.Items = append(e.Items, other.Items...)
}

func (e *Excluded) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, applicant := range e.Items {
		ids = append(ids, applicant.ID)
	}
	return ids
}

func (e *Excluded) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
