package cmd

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/notify"
)

func TestGetConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("job-description", "jd.md")
	viper.Set("exclude-file", "exclude.json")
	viper.Set("filters.top", 5)
	viper.Set("filters.required-skills", []string{"python"})
	viper.Set("ai.enabled", true)
	viper.Set("ai.gemini.model", "gemini-2.5-flash")
	viper.Set("ai.gemini.api-key", "secret")

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.JobDescription != "jd.md" || config.Filters.Top != 5 || config.Vocabulary == nil {
		t.Fatalf("unexpected config: %+v", config)
	}

	cfg := config.filteringConfig()
	if cfg.ExcludeFile != "exclude.json" || cfg.Top != 5 || cfg.RequiredSkills[0] != "python" {
		t.Fatalf("unexpected filtering config: %+v", cfg)
	}
	if cfg.AI == nil || !cfg.AI.Enabled || cfg.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected ai config: %+v", cfg.AI)
	}
}

func TestRedacted(t *testing.T) {
	config := &Config{
		AI:     &AIConfig{Gemini: &GeminiConfig{APIKey: "key", Model: "m"}},
		Notify: &notify.Config{Host: "smtp", Password: "pw"},
	}

	redacted := config.redacted()
	if redacted.AI.Gemini.APIKey != "***" || redacted.Notify.Password != "***" {
		t.Fatalf("secrets must be masked: %+v %+v", redacted.AI.Gemini, redacted.Notify)
	}
	if config.AI.Gemini.APIKey != "key" || config.Notify.Password != "pw" {
		t.Fatalf("the original config must not change")
	}
	if redacted.AI.Gemini.Model != "m" || redacted.Notify.Host != "smtp" {
		t.Fatalf("non-secret fields must be kept")
	}
}
