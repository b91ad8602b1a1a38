package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/screening"
)

type aiReviewFilter struct {
	disabled bool
	reason   string
	config   *AIConfig
}

// NewAIReview creates the AI-based review step.
func NewAIReview() Filter {
	return &aiReviewFilter{}
}

func (f *aiReviewFilter) Name() string { return "ai_review" }

func (f *aiReviewFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiReviewFilter) IsEnabled() bool { return !f.disabled }

func (f *aiReviewFilter) Validate(cfg *Config) error {
	f.config = nil
	if cfg != nil {
		f.config = cfg.AI
	}
	if !f.IsEnabled() {
		return nil
	}
	if cfg == nil || cfg.AI == nil {
		return fmt.Errorf("ai configuration is required when ai review is enabled")
	}
	if cfg.AI.Gemini == nil {
		return fmt.Errorf("gemini configuration is required when ai review is enabled")
	}
	if strings.TrimSpace(cfg.AI.Gemini.Model) == "" {
		return fmt.Errorf("gemini model is required when ai review is enabled")
	}
	return nil
}

func (f *aiReviewFilter) Apply(ctx context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error) {
	initial := c.Len()
	if deps.Reviewer == nil {
		if deps.Logger != nil {
			deps.Logger.Info("ai reviewer is not configured; skipping ai_review filter")
		}
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}
	if strings.TrimSpace(deps.Description) == "" {
		return c, Step{}, fmt.Errorf("job description is required for AI review")
	}

	if err := reviewCandidates(ctx, deps.Logger, deps.Reviewer, deps.Description, c); err != nil {
		return c, Step{}, err
	}

	left := c.Len()
	return c, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *aiReviewFilter) Status() Status {
	details := map[string]string{}
	if f.config != nil {
		details["minimum_fit_score"] = fmt.Sprintf("%.2f", f.config.MinimumFitScore)
		if f.config.Gemini != nil {
			details["model"] = f.config.Gemini.Model
			details["max_retries"] = strconv.Itoa(f.config.Gemini.MaxRetries)
			details["requests_per_minute"] = strconv.Itoa(f.config.Gemini.RequestsPerMinute)
		}
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// reviewCandidates annotates every candidate with its review. Candidates the
// model rejects are dropped; candidates whose review failed are kept.
func reviewCandidates(ctx context.Context, logger *zap.Logger, reviewer ai.Reviewer, description string, c *screening.Candidates) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	initial := c.Len()
	approved := make([]screening.ScoredCandidate, 0, initial)

	for _, candidate := range c.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		assessment, err := reviewer.Review(ctx, &candidate, description)
		if err != nil {
			logger.Warn("AI review failed",
				zap.String("candidate_id", candidate.ID),
				zap.Error(err),
			)
			candidate.Review = &screening.Review{Error: err.Error()}
			approved = append(approved, candidate)
			continue
		}

		if !assessment.Fit {
			logger.Info("candidate rejected by AI provider",
				zap.String("candidate_id", candidate.ID),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			continue
		}

		logger.Info("candidate approved by AI",
			zap.String("candidate_id", candidate.ID),
			zap.Float64("ai_score", assessment.Score),
		)

		candidate.Review = &screening.Review{
			Fit:     assessment.Fit,
			Score:   assessment.Score,
			Reason:  assessment.Reason,
			Message: assessment.Message,
			Raw:     assessment.Raw,
		}
		approved = append(approved, candidate)
	}

	c.Items = approved

	if initial != len(approved) {
		logger.Info("AI review completed",
			zap.Int("initial_candidates", initial),
			zap.Int("approved_candidates", len(approved)),
		)
	}

	return nil
}
