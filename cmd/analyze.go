package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ats"
	"github.com/spigell/devhire-ats/internal/extract"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx, txt, md)")
	analyzeCmd.Flags().String("job", "", "file with the job description")
	analyzeCmd.Flags().String("job-text", "", "job description text")
	analyzeCmd.Flags().StringArray("requirement", nil, "job requirement appended to the description, repeatable")

	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-text")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	config, logger := setup()
	defer logger.Sync()

	resumePath, _ := cmd.Flags().GetString("resume")
	jobPath, _ := cmd.Flags().GetString("job")
	inline, _ := cmd.Flags().GetString("job-text")
	requirements, _ := cmd.Flags().GetStringArray("requirement")

	extractor := newExtractor(config, logger)

	jobText, err := jobTextFrom(ctx, extractor, jobPath, inline, requirements)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, extractor, logger)
	if err != nil {
		logger.Fatal("building the scorer", zap.Error(err))
	}

	result, err := analyzeFile(ctx, scorer, resumePath, jobText)
	if err != nil {
		logger.Fatal("analyzing the resume", zap.Error(err))
	}

	if err := printResult(cmd.OutOrStdout(), result); err != nil {
		logger.Fatal("printing the result", zap.Error(err))
	}
}

func analyzeFile(ctx context.Context, scorer *ats.Scorer, path, jobText string) (ats.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return ats.Result{}, fmt.Errorf("open resume: %w", err)
	}
	defer file.Close()

	return scorer.Score(ctx, extract.Document{Name: filepath.Base(path), Reader: file}, jobText), nil
}

func printResult(w io.Writer, result ats.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
