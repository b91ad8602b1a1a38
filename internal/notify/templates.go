package notify

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/spigell/resume-screener/internal/screening"
)

const (
	TemplateInterview = "interview"
	TemplateRejection = "rejection"
	TemplateFollowUp  = "follow-up"
)

const signature = "\n\nBest regards,\nRecruitment Team\n"

var templates = map[string]struct{ subject, body string }{
	TemplateInterview: {
		subject: "Interview Invitation - {{.Score}}% Match",
		body: `Dear {{.Name}},

Based on our initial screening, your profile shows a strong {{.Score}}% match with our requirements.

We would like to invite you for an interview to discuss your application further.` + signature,
	},
	TemplateRejection: {
		subject: "Application Status Update",
		body: `Dear {{.Name}},

Thank you for your interest in our position. While your profile shows a {{.Score}}% match,
we have decided to proceed with other candidates whose qualifications better match our current needs.

We will keep your application on file for future opportunities.` + signature,
	},
	TemplateFollowUp: {
		subject: "Application Follow-up",
		body: `Dear {{.Name}},

We are following up on your application. Your profile shows a promising {{.Score}}% match with our requirements.

Could you please provide additional information about your experience with:
{{range .Skills}}- {{.}}
{{end}}` + strings.TrimPrefix(signature, "\n"),
	},
}

// Templates lists the available template names.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Data is what a template can refer to.
type Data struct {
	Name   string
	Score  string
	Skills []string
}

func dataFor(c screening.ScoredCandidate) Data {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "Candidate"
	}
	return Data{
		Name:   name,
		Score:  strconv.FormatFloat(c.Similarity, 'f', -1, 64),
		Skills: c.Skills.All(),
	}
}

// Render fills the named template for a candidate.
func Render(name string, c screening.ScoredCandidate) (subject, body string, err error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q, expected one of %s", name, strings.Join(Templates(), ", "))
	}

	data := dataFor(c)
	if subject, err = execute(name+" subject", tmpl.subject, data); err != nil {
		return "", "", err
	}
	if body, err = execute(name, tmpl.body, data); err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func execute(name, text string, data Data) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
