package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/decode"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume>",
	Short: "Print the attributes extracted from one resume as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extractOne(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("disable-ner", false, "do not use the named entity recognizer for names")
	viper.BindPFlag("disable-ner", extractCmd.Flags().Lookup("disable-ner"))
}

func extractOne(cmd *cobra.Command, path string) {
	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	vocab, err := vocabulary.Load(config.vocabularySources())
	if err != nil {
		logger.Fatal("loading the vocabulary", zap.Error(err))
	}

	text, err := decode.New(logger).Decode(context.Background(), path)
	if err != nil {
		logger.Fatal("decoding the resume", zap.Error(err))
	}

	result := extract.Extract(text, vocab, extract.Options{DisableNER: config.DisableNER})

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("encoding the result", zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
}
