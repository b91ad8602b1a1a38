package filtering

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
)

type minimumScoreFilter struct {
	threshold float64
}

// NewMinimumScore creates a filter that removes candidates below the similarity threshold.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(string) {}

func (f *minimumScoreFilter) IsEnabled() bool { return true }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.threshold = 0
	if cfg != nil {
		f.threshold = cfg.MinimumScore
	}
	if f.threshold < 0 || f.threshold > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %v", f.threshold)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error) {
	initial := c.Len()
	if f.threshold == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	removed := c.Keep(func(item screening.ScoredCandidate) bool {
		return item.Similarity >= f.threshold
	})
	logExcluded(deps, "excluding candidates below the minimum score", removed, c.Len(),
		zap.Float64("minimum_score", f.threshold),
	)

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{
		"minimum_score": strconv.FormatFloat(f.threshold, 'f', 2, 64),
	}}
}

type requiredSkillsFilter struct {
	skills []string
}

// NewRequiredSkills creates a filter that removes candidates missing any required skill.
func NewRequiredSkills() Filter {
	return &requiredSkillsFilter{}
}

func (f *requiredSkillsFilter) Name() string { return "required_skills" }

func (f *requiredSkillsFilter) Disable(string) {}

func (f *requiredSkillsFilter) IsEnabled() bool { return true }

func (f *requiredSkillsFilter) Validate(cfg *Config) error {
	f.skills = nil
	if cfg == nil {
		return nil
	}
	for _, skill := range cfg.RequiredSkills {
		if skill = strings.ToLower(strings.TrimSpace(skill)); skill != "" {
			f.skills = append(f.skills, skill)
		}
	}
	return nil
}

func (f *requiredSkillsFilter) Apply(_ context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error) {
	initial := c.Len()
	if len(f.skills) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	removed := c.Keep(func(item screening.ScoredCandidate) bool {
		have := item.Skills.All()
		for _, skill := range f.skills {
			if !slices.Contains(have, skill) {
				return false
			}
		}
		return true
	})
	logExcluded(deps, "excluding candidates without the required skills", removed, c.Len(),
		zap.Strings("required_skills", f.skills),
	)

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *requiredSkillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["required_skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type contactFilter struct {
	required bool
}

// NewContact creates a filter that removes candidates without an e-mail address
// when contacting them is required.
func NewContact() Filter {
	return &contactFilter{}
}

func (f *contactFilter) Name() string { return "contact" }

func (f *contactFilter) Disable(string) {}

func (f *contactFilter) IsEnabled() bool { return true }

func (f *contactFilter) Validate(cfg *Config) error {
	f.required = cfg != nil && cfg.RequireContact
	return nil
}

func (f *contactFilter) Apply(_ context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error) {
	initial := c.Len()
	if !f.required {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	removed := c.Keep(func(item screening.ScoredCandidate) bool {
		return strings.TrimSpace(item.Email) != ""
	})
	logExcluded(deps, "excluding candidates without an e-mail address", removed, c.Len())

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *contactFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{
		"require_contact": strconv.FormatBool(f.required),
	}}
}

type topFilter struct {
	n int
}

// NewTop creates a filter that keeps only the best N candidates.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Disable(string) {}

func (f *topFilter) IsEnabled() bool { return true }

func (f *topFilter) Validate(cfg *Config) error {
	f.n = 0
	if cfg != nil {
		f.n = cfg.Top
	}
	if f.n < 0 {
		return fmt.Errorf("top must not be negative, got %d", f.n)
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error) {
	initial := c.Len()
	if f.n == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	removed := c.Truncate(f.n)
	logExcluded(deps, "keeping only the top candidates", removed, c.Len(), zap.Int("top", f.n))

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *topFilter) Status() Status {
	details := map[string]string{}
	if f.n > 0 {
		details["top"] = strconv.Itoa(f.n)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
