package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/decode"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/similarity"
	"github.com/spigell/resume-screener/internal/textnorm"
)

var compareCmd = &cobra.Command{
	Use:   "compare <resumes-dir>",
	Short: "Find the most similar pairs of resumes in a directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		compare(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Float64("threshold", 0, "report only pairs at or above this similarity in percent")
}

// compare reports, for every resume, the other resume closest to it.
// Near-duplicates usually mean the same candidate applied twice.
func compare(cmd *cobra.Command, dir string) {
	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")

	ctx := context.Background()
	registry := decode.New(logger)

	sources, err := registry.Discover(dir)
	if err != nil {
		logger.Fatal("listing resumes", zap.Error(err))
	}

	stop := textnorm.English()
	ids := make([]string, 0, len(sources))
	texts := make([]string, 0, len(sources))
	for _, src := range sources {
		text, err := registry.Decode(ctx, src.Path)
		if err != nil {
			logger.Warn("skipping document that could not be decoded", zap.Error(err))
			continue
		}
		ids = append(ids, src.ID)
		texts = append(texts, textnorm.CleanForVectorization(textnorm.Normalize(text), stop))
	}

	if len(texts) < 2 {
		logger.Info("exiting", zap.String("reason", "need at least two resumes to compare"))
		return
	}

	matrix := similarity.Pairwise(texts)
	for i := range matrix {
		closest := similarity.MostSimilar(matrix, i)[0]
		percent := matrix[i][closest] * 100
		if percent < threshold {
			continue
		}
		logger.Info("closest resume",
			zap.String("id", ids[i]),
			zap.String("closest", ids[closest]),
			zap.Float64("similarity", percent),
		)
	}
}
