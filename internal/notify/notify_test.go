package notify

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/screening"
)

type fakeTransport struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeTransport) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func shortlist() *screening.Candidates {
	return screening.NewCandidates([]screening.ScoredCandidate{
		{ID: "jane.pdf", Name: "Jane Doe", Email: "jane@example.com", Similarity: 82.5,
			Skills: extract.Skills{"programming": {"python", "sql"}}},
		{ID: "john.docx", Name: "John Smith", Similarity: 61},
		{ID: "ann.txt", Email: "ann@example.com", Similarity: 40,
			Skills: extract.Skills{"programming": {}}},
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	jane := shortlist().Items[0]

	tests := []struct {
		template string
		subject  string
		contains []string
	}{
		{
			template: TemplateInterview,
			subject:  "Interview Invitation - 82.5% Match",
			contains: []string{"Dear Jane Doe,", "strong 82.5% match", "invite you for an interview", "Recruitment Team"},
		},
		{
			template: TemplateRejection,
			subject:  "Application Status Update",
			contains: []string{"shows a 82.5% match", "proceed with other candidates"},
		},
		{
			template: TemplateFollowUp,
			subject:  "Application Follow-up",
			contains: []string{"promising 82.5% match", "experience with:\n- python\n- sql\n\nBest regards,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			t.Parallel()

			subject, body, err := Render(tt.template, jane)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if subject != tt.subject {
				t.Fatalf("unexpected subject: %q", subject)
			}
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Fatalf("expected body to contain %q:\n%s", want, body)
				}
			}
		})
	}
}

func TestRenderFallbacks(t *testing.T) {
	t.Parallel()

	_, body, err := Render(TemplateInterview, screening.ScoredCandidate{ID: "x.txt", Similarity: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(body, "Dear Candidate,") {
		t.Fatalf("expected a generic salutation: %q", body)
	}

	if _, _, err := Render("welcome", screening.ScoredCandidate{}); err == nil {
		t.Fatalf("expected an error for an unknown template")
	}

	if !slices.Equal(Templates(), []string{"follow-up", "interview", "rejection"}) {
		t.Fatalf("unexpected templates: %v", Templates())
	}
}

func TestNotify(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	sender := &Sender{from: "hr@example.com", transport: transport, logger: zap.NewNop()}

	result, err := sender.Notify(context.Background(), shortlist(), TemplateInterview)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(result.Sent, []string{"jane.pdf", "ann.txt"}) || !slices.Equal(result.Skipped, []string{"john.docx"}) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(transport.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(transport.sent))
	}

	recipients, err := transport.sent[0].GetRecipients()
	if err != nil || !slices.Equal(recipients, []string{"jane@example.com"}) {
		t.Fatalf("unexpected recipients: %v %v", recipients, err)
	}
	if subject := transport.sent[1].GetGenHeader(mail.HeaderSubject); len(subject) != 1 || subject[0] != "Interview Invitation - 40% Match" {
		t.Fatalf("unexpected subject: %v", subject)
	}
}

func TestNotifyErrors(t *testing.T) {
	t.Parallel()

	failing := &Sender{from: "hr@example.com", transport: &fakeTransport{err: errors.New("connection refused")}, logger: zap.NewNop()}
	if _, err := failing.Notify(context.Background(), shortlist(), TemplateRejection); err == nil {
		t.Fatalf("expected the transport error")
	}

	idle := &fakeTransport{}
	sender := &Sender{from: "hr@example.com", transport: idle, logger: zap.NewNop()}
	if _, err := sender.Notify(context.Background(), shortlist(), "unknown"); err == nil {
		t.Fatalf("expected an error for an unknown template")
	}

	noEmail := screening.NewCandidates([]screening.ScoredCandidate{{ID: "a"}})
	result, err := sender.Notify(context.Background(), noEmail, TemplateRejection)
	if err != nil || len(result.Sent) != 0 || len(idle.sent) != 0 {
		t.Fatalf("nothing should be sent: %+v %v", result, err)
	}
}

func TestNewSenderValidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no host", cfg: Config{Username: "hr@example.com", Password: "secret"}},
		{name: "no username", cfg: Config{Host: "smtp.example.com", Password: "secret"}},
		{name: "no password", cfg: Config{Host: "smtp.example.com", Username: "hr@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewSender(tt.cfg, nil); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}

	sender, err := NewSender(Config{Host: "smtp.example.com", Username: "hr@example.com", Password: "secret"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.from != "hr@example.com" {
		t.Fatalf("sender should default to the username, got %q", sender.from)
	}
}
