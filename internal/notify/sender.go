package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/secrets"
)

const defaultPort = 587

// Config describes the SMTP account used for candidate e-mails.
type Config struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	From         string `mapstructure:"from"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	PasswordEnv  string `mapstructure:"password-env"`
}

type transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Sender delivers rendered templates to candidates over SMTP with STARTTLS.
type Sender struct {
	from      string
	transport transport
	logger    *zap.Logger
}

// Result lists the candidate IDs an e-mail went to and those without an address.
type Result struct {
	Sent    []string
	Skipped []string
}

func NewSender(cfg Config, logger *zap.Logger) (*Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("smtp host is required")
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		return nil, errors.New("smtp username is required")
	}

	password, err := secrets.Load(secrets.Source{
		Name:  "smtp password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
		Env:   cfg.PasswordEnv,
	})
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port <= 0 {
		port = defaultPort
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = username
	}

	return &Sender{from: from, transport: client, logger: logger}, nil
}

// Notify renders the template for every candidate with an e-mail address and
// sends the messages over one connection. Candidates without an address are skipped.
func (s *Sender) Notify(ctx context.Context, c *screening.Candidates, templateName string) (*Result, error) {
	result := &Result{}
	if c == nil {
		return result, nil
	}

	messages := make([]*mail.Msg, 0, c.Len())
	for _, candidate := range c.Items {
		if strings.TrimSpace(candidate.Email) == "" {
			result.Skipped = append(result.Skipped, candidate.ID)
			continue
		}

		msg, err := s.message(templateName, candidate)
		if err != nil {
			return nil, fmt.Errorf("prepare e-mail for %s: %w", candidate.ID, err)
		}
		messages = append(messages, msg)
		result.Sent = append(result.Sent, candidate.ID)
	}

	if len(result.Skipped) > 0 {
		s.logger.Info("skipping candidates without e-mail", zap.Strings("candidates", result.Skipped))
	}

	if len(messages) == 0 {
		return result, nil
	}

	if err := s.transport.DialAndSendWithContext(ctx, messages...); err != nil {
		return nil, fmt.Errorf("send e-mails: %w", err)
	}

	s.logger.Info("candidates notified",
		zap.String("template", templateName),
		zap.Int("sent", len(result.Sent)),
	)
	return result, nil
}

func (s *Sender) message(templateName string, candidate screening.ScoredCandidate) (*mail.Msg, error) {
	subject, body, err := Render(templateName, candidate)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(candidate.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
