package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/decode"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/similarity"
	"github.com/spigell/resume-screener/internal/textnorm"
)

var scoreCmd = &cobra.Command{
	Use:   "score <resume> <job-description>",
	Short: "Print the similarity of one resume to a job description in percent",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		score(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func score(cmd *cobra.Command, resumePath, descriptionPath string) {
	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	ctx := context.Background()
	registry := decode.New(logger)

	resume, err := registry.Decode(ctx, resumePath)
	if err != nil {
		logger.Fatal("decoding the resume", zap.Error(err))
	}
	description, err := registry.Decode(ctx, descriptionPath)
	if err != nil {
		logger.Fatal("decoding the job description", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", similarity.Score(textnorm.Normalize(resume), description, textnorm.English()))
}
