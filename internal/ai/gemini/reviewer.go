package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Reviewer implements ai.Reviewer on top of a Gemini generator.
type Reviewer struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength   = 200
	maxDescriptionRunes   = 8000
	descriptionPlaceholder = "{{DESCRIPTION}}"
)

var _ ai.Reviewer = (*Reviewer)(nil)

func NewReviewer(generator contentGenerator, minScore float64, maxLogLength int, log *zap.Logger) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Reviewer{
		generator: generator,
		minScore:  minScore,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

type candidateProfile struct {
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Similarity  float64             `json:"similarity"`
	SkillsMatch float64             `json:"skills_match"`
	Skills      map[string][]string `json:"skills"`
	Education   []string            `json:"education"`
	JobTitles   []string            `json:"job_titles"`
}

func (r *Reviewer) Review(ctx context.Context, candidate *screening.ScoredCandidate, description string) (*ai.FitAssessment, error) {
	if candidate == nil {
		return nil, fmt.Errorf("candidate is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("job description is required")
	}

	profile := candidateProfile{
		Name:        candidate.Name,
		Email:       candidate.Email,
		Similarity:  candidate.Similarity,
		SkillsMatch: candidate.SkillsMatch,
		Skills:      make(map[string][]string, len(candidate.Skills)),
		Education:   candidate.Education,
		JobTitles:   candidate.JobTitles,
	}
	for category, terms := range candidate.Skills {
		if len(terms) > 0 {
			profile.Skills[string(category)] = terms
		}
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate profile: %w", err)
	}

	system := buildPrompt(description)
	message := string(profileJSON)

	r.logger.Debug("gemini generate content request",
		zap.String("candidate_id", candidate.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(system)+utf8.RuneCountInString(message)),
		zap.String("profile_preview", utils.TruncateForLog(message, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini generate content response",
		zap.String("candidate_id", candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if r.minScore > 0 && assessment.Score < r.minScore {
		r.logger.Debug("set fit to false by score threshold",
			zap.String("candidate_id", candidate.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", r.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(description string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job description:\n" + descriptionPlaceholder + "\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, descriptionPlaceholder, sanitizeDescription(description))
}

// sanitizeDescription keeps the description from posing as a prompt section.
func sanitizeDescription(description string) string {
	description = strings.TrimSpace(description)
	description = strings.NewReplacer("[", "(", "]", ")", "{{", "{", "}}", "}").Replace(description)

	runes := []rune(description)
	if len(runes) > maxDescriptionRunes {
		description = strings.TrimSpace(string(runes[:maxDescriptionRunes]))
	}
	return description
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:     coerceBool(data["fit"]),
		Score:   score,
		Reason:  coerceString(data["reason"]),
		Message: coerceString(data["message"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// models sometimes wrap the object in prose
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
