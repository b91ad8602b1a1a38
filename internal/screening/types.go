package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/textnorm"
)

// Document is one decoded resume. CleanedText is derived from RawText once.
type Document struct {
	ID          string
	RawText     string
	CleanedText string
}

// NewDocument normalizes raw into a Document.
func NewDocument(id, raw string) Document {
	return Document{ID: id, RawText: raw, CleanedText: textnorm.Normalize(raw)}
}

// Review is the outcome of an optional LLM review. It never changes the similarity.
type Review struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Error   string  `json:"error,omitempty"`
	Raw     string  `json:"-"`
}

// ScoredCandidate is a document's extracted attributes together with its
// similarity to the job description, in percent.
type ScoredCandidate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Email       string         `json:"email,omitempty"`
	Emails      []string       `json:"emails,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Education   []string       `json:"education,omitempty"`
	JobTitles   []string       `json:"job_titles,omitempty"`
	Skills      extract.Skills `json:"skills"`
	SkillsMatch float64        `json:"skills_match"`
	Similarity  float64        `json:"similarity"`
	Review      *Review        `json:"review,omitempty"`
}

// DisplayName is the extracted name, or the document ID when no name was found.
func (c ScoredCandidate) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.ID
}

func newCandidate(doc Document, result extract.Result, similarity float64, required []string) ScoredCandidate {
	c := ScoredCandidate{
		ID:          doc.ID,
		Email:       result.Email(),
		Emails:      result.Emails,
		Education:   result.Education,
		JobTitles:   result.JobTitles,
		Skills:      result.Skills,
		SkillsMatch: extract.SkillsMatch(result.Skills, required),
		Similarity:  similarity,
	}
	if result.Name != nil {
		c.Name = *result.Name
	}
	if result.Phone != nil {
		c.Phone = *result.Phone
	}
	return c
}

// Source is a resume on disk waiting to be decoded.
type Source struct {
	ID   string
	Path string
}

// Decoder turns a file into text.
type Decoder interface {
	Decode(ctx context.Context, path string) (string, error)
}

// ErrUnsupportedFormat is wrapped by DecodeFailure when no decoder handles a file.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DecodeFailure reports a source that could not be turned into text. Such a
// source is left out of the ranking.
type DecodeFailure struct {
	Path string
	Err  error
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeFailure) Unwrap() error {
	return e.Err
}

// Outcome is the result of screening a set of sources.
type Outcome struct {
	Candidates []ScoredCandidate
	Failures   []*DecodeFailure
}
