package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/applicants"
	"github.com/spigell/devhire-ats/internal/screening"
)

const (
	PromptShowRanking         = "Show ranking"
	PromptReportByVerdict     = "Report by verdict"
	PromptShowApplicant       = "Show applicant"
	PromptAppendToExcludeFile = "Append all applicants to exclude file"
	PromptApplicantsToFile    = "Dump applicants to file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score every resume in a directory and rank the applicants",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("dir", "", "directory with resume files")
	rankCmd.Flags().String("job", "", "file with the job description")
	rankCmd.Flags().String("job-text", "", "job description text")
	rankCmd.Flags().StringArray("requirement", nil, "job requirement appended to the description, repeatable")
	rankCmd.Flags().Int("min-score", 0, "drop applicants scoring below this value")
	rankCmd.Flags().StringArray("require", nil, "skill every applicant must list, repeatable")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with applicants to exclude. Default is unset.")
	rankCmd.Flags().Bool("keep-incomplete", false, "keep applicants whose resume could not be read")
	rankCmd.Flags().Int("concurrency", applicants.DefaultConcurrency, "resumes scored in parallel")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking without the interactive menu")

	rankCmd.MarkFlagRequired("dir")
	rankCmd.MarkFlagsMutuallyExclusive("job", "job-text")
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()

	config, logger := setup()
	defer logger.Sync()

	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	jobPath, _ := flags.GetString("job")
	inline, _ := flags.GetString("job-text")
	requirements, _ := flags.GetStringArray("requirement")
	concurrency, _ := flags.GetInt("concurrency")
	autoApprove, _ := flags.GetBool("auto-approve")

	screen := &screening.Config{}
	screen.MinScore, _ = flags.GetInt("min-score")
	screen.RequiredSkills, _ = flags.GetStringArray("require")
	screen.ExcludeFile, _ = flags.GetString("exclude-file")
	screen.KeepIncomplete, _ = flags.GetBool("keep-incomplete")

	extractor := newExtractor(config, logger)

	jobText, err := jobTextFrom(ctx, extractor, jobPath, inline, requirements)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, extractor, logger)
	if err != nil {
		logger.Fatal("building the scorer", zap.Error(err))
	}

	screen.Vocabulary = scorer.Vocabulary()

	files, err := applicants.ResumeFiles(dir)
	if err != nil {
		logger.Fatal("listing resumes", zap.Error(err))
	}

	if len(files) == 0 {
		logger.Info("exiting", zap.String("reason", "no resumes found"), zap.String("dir", dir))
		return
	}

	logger.Info("scoring resumes", zap.Int("count", len(files)), zap.Int("concurrency", concurrency))

	pool, err := applicants.ScoreAll(ctx, scorer, files, jobText, concurrency, logger)
	if err != nil {
		logger.Fatal("scoring resumes", zap.Error(err))
	}

	steps := screening.Default()
	pool, err = screening.Run(ctx, screen, screening.Deps{Logger: logger}, steps, pool)
	if err != nil {
		logger.Fatal("screening failed", zap.Error(err))
	}

	for _, status := range screening.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	if pool.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no applicants left after filters"))
		return
	}

	pool.SortByScore()

	if autoApprove {
		showRanking(logger, pool)
		return
	}

	for {
		items := []string{PromptShowRanking, PromptReportByVerdict, PromptShowApplicant}
		if screen.ExcludeFile != "" && pool.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}
		items = append(items, PromptApplicantsToFile, PromptExit)

		prompt := promptui.Select{
			Label: "What next?",
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of applicants", zap.Int("count", pool.Len()))

		if err := handleAction(action, logger, screen.ExcludeFile, pool); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, excludeFile string, pool *applicants.Applicants) error {
	switch action {
	case PromptShowRanking:
		showRanking(logger, pool)
		return nil
	case PromptReportByVerdict:
		pretty, _ := json.MarshalIndent(pool.ReportByVerdict(), "", "  ")
		logger.Info(string(pretty), zap.Int("applicants count", pool.Len()))
		return nil
	case PromptShowApplicant:
		return showApplicant(logger, pool)
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, excludeFile, pool)
	case PromptApplicantsToFile:
		filename, err := pool.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showRanking(logger *zap.Logger, pool *applicants.Applicants) {
	for i, applicant := range pool.Items {
		logger.Info("applicant",
			zap.Int("rank", i+1),
			zap.String("id", applicant.ID),
			zap.String("file", applicant.Name()),
			zap.Int("score", applicant.Result.Score),
			zap.String("verdict", string(applicant.Result.Verdict)),
			zap.Strings("matched", applicant.Result.MatchedSkills),
			zap.Strings("missing", applicant.Result.MissingSkills),
		)
	}
}

func applicantLabel(a *applicants.Applicant) string {
	return fmt.Sprintf("%s %3d / %s / %s", a.ID, a.Result.Score, a.Result.Verdict, a.Name())
}

func showApplicant(logger *zap.Logger, pool *applicants.Applicants) error {
	items := make([]string, 0, pool.Len()+1)
	for _, applicant := range pool.Items {
		items = append(items, applicantLabel(applicant))
	}

	applicantPrompt := promptui.Select{
		Label: "Choose an applicant and press ENTER",
		Items: append(items, PromptBack),
		Size:  10,
	}

	_, selected, err := applicantPrompt.Run()
	if err != nil {
		return err
	}

	if selected == PromptBack {
		return nil
	}

	id := strings.Split(selected, " ")[0]
	applicant := pool.FindByID(id)
	if applicant == nil {
		return fmt.Errorf("there is no such applicant id %s", id)
	}

	pretty, _ := json.MarshalIndent(applicant, "", "  ")
	logger.Info(string(pretty))
	return nil
}

func appendToExcludeFile(logger *zap.Logger, excludeFile string, pool *applicants.Applicants) error {
	excluded, err := applicants.GetExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(pool.ToExcluded())

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", pool.Len()))

	pool.ExcludeByIDs(excluded.IDs())
	return nil
}
