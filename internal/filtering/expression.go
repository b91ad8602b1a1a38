package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
)

const candidateVariable = "candidate"

type expressionFilter struct {
	source  string
	program cel.Program
}

// NewExpression creates a filter that keeps candidates for which a CEL
// expression over `candidate` is true, e.g.
//
//	candidate.score >= 40.0 && "python" in candidate.skills.programming
func NewExpression() Filter {
	return &expressionFilter{}
}

func (f *expressionFilter) Name() string { return "expression" }

func (f *expressionFilter) Disable(string) {}

func (f *expressionFilter) IsEnabled() bool { return true }

func (f *expressionFilter) Validate(cfg *Config) error {
	f.source, f.program = "", nil
	if cfg == nil || strings.TrimSpace(cfg.Expression) == "" {
		return nil
	}

	program, err := compileExpression(cfg.Expression)
	if err != nil {
		return err
	}
	f.source, f.program = strings.TrimSpace(cfg.Expression), program
	return nil
}

func (f *expressionFilter) Apply(_ context.Context, deps Deps, c *screening.Candidates) (*screening.Candidates, Step, error) {
	initial := c.Len()
	if f.program == nil {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	var evalErr error
	removed := c.Keep(func(item screening.ScoredCandidate) bool {
		if evalErr != nil {
			return true
		}
		keep, err := evaluate(f.program, item)
		if err != nil {
			evalErr = fmt.Errorf("evaluate expression for %s: %w", item.ID, err)
			return true
		}
		return keep
	})
	if evalErr != nil {
		return c, Step{}, evalErr
	}

	logExcluded(deps, "excluding candidates by expression", removed, c.Len(),
		zap.String("expression", f.source),
	)

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *expressionFilter) Status() Status {
	details := map[string]string{}
	if f.source != "" {
		details["expression"] = f.source
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func compileExpression(expr string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable(candidateVariable, cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create expression environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build expression program: %w", err)
	}
	return program, nil
}

func evaluate(program cel.Program, item screening.ScoredCandidate) (bool, error) {
	out, _, err := program.Eval(map[string]any{candidateVariable: activation(item)})
	if err != nil {
		return false, err
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// activation exposes a candidate to expressions with plain maps and lists only.
func activation(item screening.ScoredCandidate) map[string]any {
	skills := make(map[string]any, len(item.Skills))
	for category, terms := range item.Skills {
		skills[string(category)] = toList(terms)
	}

	return map[string]any{
		"id":           item.ID,
		"name":         item.Name,
		"email":        item.Email,
		"phone":        item.Phone,
		"score":        item.Similarity,
		"skills_match": item.SkillsMatch,
		"skills":       skills,
		"all_skills":   toList(item.Skills.All()),
		"education":    toList(item.Education),
		"job_titles":   toList(item.JobTitles),
	}
}

func toList(values []string) []any {
	list := make([]any, len(values))
	for i, value := range values {
		list[i] = value
	}
	return list
}
