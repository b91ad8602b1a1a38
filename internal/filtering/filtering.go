package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/screening"
)

// Filter represents a single filtering step applied to ranked candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error)
}

// DropRecorder counts candidates removed by a step.
type DropRecorder interface {
	FilterDropped(step string, n int)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger      *zap.Logger
	Reviewer    ai.Reviewer
	Description string
	Metrics     DropRecorder
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinimumScore   float64
	RequiredSkills []string
	Expression     string
	RequireContact bool
	Top            int
	ExcludeFile    string
	AI             *AIConfig
}

// AIConfig stores AI-related configuration used by the filters.
type AIConfig struct {
	Enabled         bool
	Provider        string
	MinimumFitScore float64
	Gemini          *GeminiConfig
}

// GeminiConfig stores Gemini provider configuration.
type GeminiConfig struct {
	Model             string
	MaxRetries        int
	MaxLogLength      int
	RequestsPerMinute int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns every step in the order they run: cheap exclusions first,
// the LLM review last so it only sees what is left.
func Default() []Filter {
	return []Filter{
		NewExcludeFile(),
		NewMinimumScore(),
		NewRequiredSkills(),
		NewExpression(),
		NewContact(),
		NewTop(),
		NewAIReview(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates the enabled filters, then executes them sequentially.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, c *screening.Candidates) (*screening.Candidates, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}
		if deps.Metrics != nil && info.Dropped > 0 {
			deps.Metrics.FilterDropped(step.Name(), info.Dropped)
		}

		c = next
	}

	return c, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func logExcluded(deps Deps, msg string, removed []string, left int, fields ...zap.Field) {
	if deps.Logger == nil || len(removed) == 0 {
		return
	}
	fields = append(fields,
		zap.Strings("excluded_candidates", removed),
		zap.Int("candidates_left", left),
	)
	deps.Logger.Info(msg, fields...)
}
