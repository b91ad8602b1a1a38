package ai

import (
	"context"

	"github.com/spigell/resume-screener/internal/screening"
)

type FitAssessment struct {
	Fit     bool
	Score   float64
	Reason  string
	Message string
	Raw     string
}

// Reviewer asks a language model whether a candidate fits the job description.
type Reviewer interface {
	Review(ctx context.Context, candidate *screening.ScoredCandidate, description string) (*FitAssessment, error)
}
