package filtering

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/resume-screener/internal/screening"
)

// ExcludedCandidates is the content of an exclude file.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID         string
	Name       string
	Email      string
	ExcludedAt time.Time
}

// ToExcluded converts candidates into exclude file entries.
func ToExcluded(c *screening.Candidates) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	for _, item := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ID:         item.ID,
			Name:       item.Name,
			Email:      item.Email,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// ReadExcludeFile loads an exclude file. A missing or empty file is an empty list.
func ReadExcludeFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedCandidates{}, nil
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
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

// Append adds the entries whose IDs are not listed yet.
func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedCandidates) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendToExcludeFile records the candidates in the exclude file so later runs skip them.
func AppendToExcludeFile(path string, c *screening.Candidates) (*ExcludedCandidates, error) {
	excluded, err := ReadExcludeFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exclude file: %w", err)
	}

	excluded.Append(ToExcluded(c))

	if err := excluded.ToFile(path); err != nil {
		return nil, fmt.Errorf("writing exclude file: %w", err)
	}
	return excluded, nil
}
