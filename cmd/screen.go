package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/decode"
	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/metrics"
	"github.com/spigell/resume-screener/internal/notify"
	"github.com/spigell/resume-screener/internal/report"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/secrets"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

const (
	PromptExport              = "Export"
	PromptReportBySkills      = "Report by skills"
	PromptNotify              = "Notify candidates"
	PromptAppendToExcludeFile = "Append all candidates to exclude file"
	PromptDumpToFile          = "Dump candidates to file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Rank a directory of resumes against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		screen(cmd)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringP("job-description", "p", "", "job description file (.txt, .md, .pdf, .docx)")
	screenCmd.Flags().StringP("resumes", "r", "", "directory with resumes")
	screenCmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")
	screenCmd.Flags().StringP("export", "o", "", "write the ranking to a .csv, .xlsx or .json file")
	screenCmd.Flags().Int("top", 0, "keep only the first N candidates")
	screenCmd.Flags().Float64("minimum-score", 0, "drop candidates below this similarity in percent")
	screenCmd.Flags().String("expression", "", "CEL expression over `candidate` that must be true to keep it")
	screenCmd.Flags().Int("workers", 0, "parallel extraction workers (default GOMAXPROCS)")
	screenCmd.Flags().String("metrics-file", "", "write run metrics in the prometheus textfile format")
	screenCmd.Flags().Bool("no-ai", false, "skip the AI review even when it is configured")
	screenCmd.Flags().BoolP("yes", "y", false, "do not ask what to do with the ranking")

	viper.BindPFlag("job-description", screenCmd.Flags().Lookup("job-description"))
	viper.BindPFlag("resumes", screenCmd.Flags().Lookup("resumes"))
	viper.BindPFlag("exclude-file", screenCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("export", screenCmd.Flags().Lookup("export"))
	viper.BindPFlag("filters.top", screenCmd.Flags().Lookup("top"))
	viper.BindPFlag("filters.minimum-score", screenCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("filters.expression", screenCmd.Flags().Lookup("expression"))
	viper.BindPFlag("workers", screenCmd.Flags().Lookup("workers"))
	viper.BindPFlag("metrics-file", screenCmd.Flags().Lookup("metrics-file"))
}

// screen is the main command for the cli.
func screen(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := uuid.NewString()

	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		RunID: runID,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config.redacted(), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.JobDescription) == "" {
		logger.Fatal("job description is required", zap.String("hint", "set --job-description or job-description in the configuration file"))
	}
	if strings.TrimSpace(config.Resumes) == "" {
		logger.Fatal("resumes directory is required", zap.String("hint", "set --resumes or resumes in the configuration file"))
	}

	registry := decode.New(logger)

	description, err := registry.Decode(ctx, config.JobDescription)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}
	if strings.TrimSpace(description) == "" {
		logger.Fatal("job description is empty", zap.String("path", config.JobDescription))
	}

	vocab, err := vocabulary.Load(config.vocabularySources())
	if err != nil {
		logger.Fatal("loading the vocabulary", zap.Error(err))
	}
	logger.Info("vocabulary loaded",
		zap.Int("job_titles", vocab.JobTitleCount()),
		zap.Int("skill_categories", len(vocab.Categories())),
	)

	sources, err := registry.Discover(config.Resumes)
	if err != nil {
		logger.Fatal("listing resumes", zap.Error(err))
	}
	if len(sources) == 0 {
		logger.Info("exiting",
			zap.String("reason", "no supported resumes found"),
			zap.Strings("extensions", registry.Extensions()),
		)
		return
	}

	run := metrics.NewRun(runID)
	recorder := newRunMetrics(run, config.MetricsFile, logger)
	defer recorder.write()

	screener := screening.New(vocab,
		screening.WithLogger(logger),
		screening.WithWorkers(config.Workers),
		screening.WithMetrics(run),
		screening.WithRequiredSkills(config.Filters.RequiredSkills),
		screening.WithNER(!config.DisableNER),
	)

	logger.Info("screening resumes", zap.Int("documents", len(sources)), zap.String("directory", config.Resumes))

	outcome, err := screener.ScreenSources(ctx, sources, registry, description)
	if err != nil {
		recorder.fatal("screening failed", zap.Error(err))
	}
	if len(outcome.Failures) > 0 {
		logger.Warn("some resumes were left out", zap.Int("failed", len(outcome.Failures)))
	}

	candidates := screening.NewCandidates(outcome.Candidates)

	deps := filtering.Deps{
		Logger:      logger,
		Description: description,
		Metrics:     run,
	}
	steps := prepareFilters(ctx, cmd, config, &deps, logger)

	candidates, err = filtering.Run(ctx, config.filteringConfig(), deps, steps, candidates)
	if err != nil {
		recorder.fatal("filtering failed", zap.Error(err))
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	if candidates.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	logRanking(logger, candidates)

	summary, _ := json.MarshalIndent(report.Summarize(candidates), "", "  ")
	logger.Info(string(summary), zap.Int("candidates count", candidates.Len()))

	if config.Export != "" {
		if err := report.Export(config.Export, candidates); err != nil {
			recorder.fatal("exporting the ranking", zap.Error(err))
		}
		logger.Info("ranking exported", zap.String("filename", config.Export))
	}

	if cmd.Flag("yes").Value.String() == "true" {
		return
	}

	for {
		actions := []string{PromptExport, PromptReportBySkills, PromptNotify, PromptDumpToFile}
		if config.ExcludeFile != "" && candidates.Len() != 0 {
			actions = append(actions, PromptAppendToExcludeFile)
		}
		prompt := promptui.Select{
			Label: "What to do with the candidates?",
			Items: append(actions, PromptExit),
		}

		_, action, err := prompt.Run()
		if err != nil {
			recorder.fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of candidates", zap.Int("count", candidates.Len()))

		if err := handleAction(ctx, action, logger, config, candidates); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			recorder.fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, logger *zap.Logger, config *Config, candidates *screening.Candidates) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptExport:
		exportPrompt := promptui.Prompt{
			Label:   "Export to (.csv, .xlsx, .json)",
			Default: defaultExportPath(config),
		}
		path, err := exportPrompt.Run()
		if err != nil {
			return err
		}
		if err := report.Export(path, candidates); err != nil {
			return fmt.Errorf("export ranking: %w", err)
		}
		logger.Info("ranking exported", zap.String("filename", path))
		return nil
	case PromptReportBySkills:
		pretty, _ := json.MarshalIndent(report.BySkillCategory(candidates), "", "  ")
		logger.Info(string(pretty), zap.Int("candidates count", candidates.Len()))
		return nil
	case PromptNotify:
		return notifyCandidates(ctx, logger, config, candidates)
	case PromptAppendToExcludeFile:
		excluded, err := filtering.AppendToExcludeFile(config.ExcludeFile, candidates)
		if err != nil {
			return err
		}
		logger.Info("appended to exclude file", zap.String("filename", config.ExcludeFile))

		candidates.Exclude(excluded.IDs())
		return nil
	case PromptDumpToFile:
		filename, err := report.DumpToTmpFile(candidates)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func notifyCandidates(ctx context.Context, logger *zap.Logger, config *Config, candidates *screening.Candidates) error {
	if config.Notify == nil {
		logger.Warn("notifications are not configured", zap.String("hint", "add a notify section with the smtp account"))
		return nil
	}

	templatePrompt := promptui.Select{
		Label: "Choose an e-mail template",
		Items: notify.Templates(),
	}
	_, template, err := templatePrompt.Run()
	if err != nil {
		return err
	}

	sender, err := notify.NewSender(*config.Notify, logger)
	if err != nil {
		return fmt.Errorf("preparing smtp sender: %w", err)
	}

	if _, err := sender.Notify(ctx, candidates, template); err != nil {
		return err
	}
	return nil
}

func logRanking(logger *zap.Logger, candidates *screening.Candidates) {
	for i, c := range candidates.Items {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String("id", c.ID),
			zap.String("name", c.Name),
			zap.Float64("similarity", c.Similarity),
			zap.Float64("skills_match", c.SkillsMatch),
			zap.Int("skills", len(c.Skills.All())),
		}
		if c.Email != "" {
			fields = append(fields, zap.String("email", c.Email))
		}
		if c.Review != nil && c.Review.Error == "" {
			fields = append(fields, zap.Float64("ai_score", c.Review.Score))
		}
		logger.Info("candidate", fields...)
	}
}

func defaultExportPath(config *Config) string {
	if config.Export != "" {
		return config.Export
	}
	return "candidates.xlsx"
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, config *Config, deps *filtering.Deps, logger *zap.Logger) []filtering.Filter {
	steps := filtering.Default()

	switch {
	case cmd.Flag("no-ai").Value.String() == "true":
		filtering.DisableByName(steps, "ai_review", "disabled by --no-ai")
	case config.AI == nil || !config.AI.Enabled:
		filtering.DisableByName(steps, "ai_review", "ai is disabled in configuration")
	default:
		reviewer, err := newAIReviewer(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping AI filter", zap.Error(err))
			filtering.DisableByName(steps, "ai_review", err.Error())
			break
		}
		deps.Reviewer = reviewer
	}

	return steps
}

func newAIReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai review is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   cfg.Gemini.APIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:             cfg.Gemini.Model,
		MaxRetries:        cfg.Gemini.MaxRetries,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	minScore := max(cfg.MinimumFitScore, 0)

	reviewerLogger := logger.With(zap.Float64("minimum_fit_score", minScore))

	return gemini.NewReviewer(generator, minScore, cfg.Gemini.MaxLogLength, reviewerLogger), nil
}
