package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/notify"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

const (
	app       = "resume-screener"
	envPrefix = "SCREENER"
)

type Config struct {
	JobDescription string            `mapstructure:"job-description"`
	Resumes        string            `mapstructure:"resumes"`
	Workers        int               `mapstructure:"workers"`
	DisableNER     bool              `mapstructure:"disable-ner"`
	ExcludeFile    string            `mapstructure:"exclude-file"`
	Export         string            `mapstructure:"export"`
	MetricsFile    string            `mapstructure:"metrics-file"`
	Vocabulary     *VocabularyConfig `mapstructure:"vocabulary"`
	Filters        *FiltersConfig    `mapstructure:"filters"`
	AI             *AIConfig         `mapstructure:"ai"`
	Notify         *notify.Config    `mapstructure:"notify"`
}

type VocabularyConfig struct {
	JobTitlesFile     string   `mapstructure:"job-titles-file"`
	CategoriesFile    string   `mapstructure:"categories-file"`
	SkillsFile        string   `mapstructure:"skills-file"`
	EducationKeywords []string `mapstructure:"education-keywords"`
}

type FiltersConfig struct {
	MinimumScore   float64  `mapstructure:"minimum-score"`
	RequiredSkills []string `mapstructure:"required-skills"`
	Expression     string   `mapstructure:"expression"`
	RequireContact bool     `mapstructure:"require-contact"`
	Top            int      `mapstructure:"top"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api-key"`
	APIKeyFile        string `mapstructure:"api-key-file"`
	APIKeyEnv         string `mapstructure:"api-key-env"`
	Model             string `mapstructure:"model"`
	MaxRetries        int    `mapstructure:"max-retries"`
	MaxLogLength      int    `mapstructure:"max-log-length"`
	RequestsPerMinute int    `mapstructure:"requests-per-minute"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener ranks resumes against a job description and extracts candidate attributes",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless given explicitly, but a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Vocabulary == nil {
		config.Vocabulary = &VocabularyConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}

	return config, nil
}

func (c *Config) vocabularySources() vocabulary.Sources {
	return vocabulary.Sources{
		JobTitlesFile:     c.Vocabulary.JobTitlesFile,
		CategoriesFile:    c.Vocabulary.CategoriesFile,
		SkillsFile:        c.Vocabulary.SkillsFile,
		EducationKeywords: c.Vocabulary.EducationKeywords,
	}
}

func (c *Config) filteringConfig() *filtering.Config {
	cfg := &filtering.Config{
		MinimumScore:   c.Filters.MinimumScore,
		RequiredSkills: c.Filters.RequiredSkills,
		Expression:     c.Filters.Expression,
		RequireContact: c.Filters.RequireContact,
		Top:            c.Filters.Top,
		ExcludeFile:    c.ExcludeFile,
	}

	if c.AI != nil {
		cfg.AI = &filtering.AIConfig{
			Enabled:         c.AI.Enabled,
			Provider:        c.AI.Provider,
			MinimumFitScore: c.AI.MinimumFitScore,
		}
		if g := c.AI.Gemini; g != nil {
			cfg.AI.Gemini = &filtering.GeminiConfig{
				Model:             g.Model,
				MaxRetries:        g.MaxRetries,
				MaxLogLength:      g.MaxLogLength,
				RequestsPerMinute: g.RequestsPerMinute,
			}
		}
	}

	return cfg
}

// redacted returns a copy safe to log: inline secrets are masked.
func (c *Config) redacted() *Config {
	out := *c
	if c.AI != nil && c.AI.Gemini != nil {
		ai := *c.AI
		gemini := *c.AI.Gemini
		gemini.APIKey = mask(gemini.APIKey)
		ai.Gemini = &gemini
		out.AI = &ai
	}
	if c.Notify != nil {
		n := *c.Notify
		n.Password = mask(n.Password)
		out.Notify = &n
	}
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
