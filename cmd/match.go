package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/ats-matcher/internal/export"
	"github.com/spigell/ats-matcher/internal/filtering"
	"github.com/spigell/ats-matcher/internal/logger"
	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/models"
	"github.com/spigell/ats-matcher/internal/store"
	"go.uber.org/zap"
)

const (
	PromptDetails         = "Show details"
	PromptExcel           = "Export to Excel"
	PromptJSON            = "Dump to JSON"
	PromptAppendToExclude = "Append shown candidates to exclude file"
	PromptExit            = "Exit"
	excludeReasonFmt      = "excluded from job %s"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score all candidates against a published job and rank them",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("job", "J", "", "job id to match. Asks interactively when unset")
	matchCmd.Flags().IntP("top", "t", 0, "show only the best N candidates. Overrides filters.top")
	matchCmd.Flags().Float64P("min-score", "m", 0, "drop candidates below this overall score. Overrides filters.minimum-score")
	matchCmd.Flags().StringP("output", "o", "", "write the ranking to a file (.json or .xlsx)")
	matchCmd.Flags().BoolP("yes", "y", false, "do not show the interactive menu")
	matchCmd.Flags().StringP("exclude-file", "e", "", "yaml file with candidates to exclude. Default is unset.")
	matchCmd.Flags().BoolP("include-excluded", "f", false, "do not drop candidates listed in config or in the exclude file")

	viper.BindPFlag("filters.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

// matchRun holds everything produced by one match command.
type matchRun struct {
	job        models.Job
	report     *matching.Report
	shown      []models.MatchResult
	candidates map[string]models.CandidateProfile
}

func (r *matchRun) document() export.Document {
	report := *r.report
	report.Results = r.shown
	return export.Document{Job: r.job, Report: &report, Candidates: r.candidates, CreatedAt: time.Now()}
}

func runMatch(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the ats-matcher", zap.String("version", version))
	logger.Debug("starting with config", zap.Any("config", redacted(config)))

	st, err := newStore(config.Store, logger)
	if err != nil {
		logger.Fatal("creating a store", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"configuring ai scoring",
			zap.Error(err),
			zap.String("hint", "set "+envAIKey+", "+envAIKeyFile+" or ai.api-key-file, or disable ai with ai.enabled: false"),
		)
	}

	jobID, _ := cmd.Flags().GetString("job")
	job, err := selectJob(ctx, st, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			logger.Fatal("job not found", zap.String("job_id", jobID))
		}
		logger.Fatal("selecting a job", zap.Error(err))
	}

	candidates, err := st.FetchAllCandidates(ctx)
	if err != nil {
		logger.Fatal("getting candidates", zap.Error(err))
	}
	logger.Info("getting candidates", zap.Int("count", len(candidates)))

	if len(candidates) == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	report, err := newOrchestrator(scorer, config.Matching, logger).MatchCandidates(ctx, job, candidates)
	if err != nil {
		logger.Fatal("matching candidates", zap.Error(err))
	}

	filters := prepareFilters(cmd, config.Filters, logger)
	shown, err := filtering.Run(ctx, filtering.Deps{Logger: logger}, filters, report.Results)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	run := &matchRun{job: job, report: report, shown: shown, candidates: make(map[string]models.CandidateProfile, len(candidates))}
	for _, c := range candidates {
		run.candidates[c.ID] = c
	}

	logger.Info(report.Summary.Message(),
		zap.String("run_id", report.Summary.RunID),
		zap.Int("shown", len(shown)),
		zap.Int("invalid", len(report.Invalid)),
	)
	printRanking(logger, run)

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeOutput(logger, run, output); err != nil {
			logger.Fatal("writing output", zap.Error(err))
		}
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes || len(shown) == 0 {
		return
	}

	menu := promptui.Select{
		Label: "What next?",
		Items: menuItems(config.Filters.ExcludeFile),
	}
	for {
		_, action, err := menu.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, run); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func menuItems(excludeFile string) []string {
	items := []string{PromptDetails, PromptExcel, PromptJSON}
	if excludeFile != "" {
		items = append(items, PromptAppendToExclude)
	}
	return append(items, PromptExit)
}

func handleAction(action string, logger *zap.Logger, config *Config, run *matchRun) error {
	switch action {
	case PromptDetails:
		printDetails(logger, run)
		return nil
	case PromptExcel:
		name := fmt.Sprintf("matches-%s.xlsx", run.job.ID)
		filePrompt := promptui.Prompt{Label: "File name", Default: name, AllowEdit: true}
		name, err := filePrompt.Run()
		if err != nil {
			return err
		}
		return writeOutput(logger, run, name)
	case PromptJSON:
		filename, err := export.DumpToFile(run.document(), "")
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExclude:
		return appendToExcludeFile(logger, config.Filters.ExcludeFile, run)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// selectJob resolves jobID or asks the user to pick a published job.
func selectJob(ctx context.Context, st store.Store, jobID string) (models.Job, error) {
	if jobID != "" {
		return st.GetJob(ctx, jobID)
	}

	jobs, err := st.FetchPublishedJobs(ctx)
	if err != nil {
		return models.Job{}, err
	}
	if len(jobs) == 0 {
		return models.Job{}, errors.New("there are no published jobs")
	}

	items := make([]string, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, fmt.Sprintf("%s %s (%d requirements)", j.ID, j.Title, len(j.Requirements)))
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: items,
	}
	idx, _, err := jobPrompt.Run()
	if err != nil {
		return models.Job{}, err
	}
	return jobs[idx], nil
}

func prepareFilters(cmd *cobra.Command, cfg filtering.Config, logger *zap.Logger) []filtering.Filter {
	if cmd != nil {
		if f := cmd.Flag("top"); f != nil && f.Changed {
			cfg.Top, _ = cmd.Flags().GetInt("top")
		}
		if f := cmd.Flag("min-score"); f != nil && f.Changed {
			cfg.MinimumScore, _ = cmd.Flags().GetFloat64("min-score")
		}
	}

	steps := filtering.Default(cfg)
	if cmd != nil {
		if include, _ := cmd.Flags().GetBool("include-excluded"); include {
			filtering.DisableByName(steps, "exclude_candidates", "include-excluded flag")
			filtering.DisableByName(steps, "exclude_file", "include-excluded flag")
		}
	}
	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
	return steps
}

func printRanking(logger *zap.Logger, run *matchRun) {
	for i, r := range run.shown {
		logger.Info("candidate",
			zap.Int("rank", i+1),
			zap.String("candidate_id", r.CandidateID),
			zap.String("name", run.candidates[r.CandidateID].Name),
			zap.Int("score", r.OverallScore),
			zap.String("band", export.Band(r.OverallScore)),
			zap.String("provenance", string(r.Provenance)),
		)
	}
	for _, inv := range run.report.Invalid {
		logger.Warn("candidate skipped", zap.String("candidate_id", inv.CandidateID), zap.String("reason", inv.Reason))
	}
}

func printDetails(logger *zap.Logger, run *matchRun) {
	for _, r := range run.shown {
		fields := []zap.Field{
			zap.String("candidate_id", r.CandidateID),
			zap.Int("score", r.OverallScore),
		}
		for _, cs := range r.CategoryScores {
			fields = append(fields, zap.Float64(strings.ToLower(strings.ReplaceAll(string(cs.Category), " ", "_")), cs.Score))
		}
		logger.Info("match details", fields...)

		for _, cs := range r.CategoryScores {
			for _, m := range cs.Matches {
				logger.Info("requirement",
					zap.String("candidate_id", r.CandidateID),
					zap.String("category", string(cs.Category)),
					zap.String("requirement", m.Requirement),
					zap.Bool("matched", m.Matched),
					zap.String("reason", m.Reason),
				)
			}
		}
	}
}

func writeOutput(logger *zap.Logger, run *matchRun, output string) error {
	var (
		filename string
		err      error
	)
	if strings.HasSuffix(strings.ToLower(output), ".json") {
		filename, err = export.DumpToFile(run.document(), output)
	} else {
		filename, err = export.ToExcel(run.document(), output)
	}
	if err != nil {
		return err
	}
	logger.Info("results written", zap.String("filename", filename))
	return nil
}

func appendToExcludeFile(logger *zap.Logger, path string, run *matchRun) error {
	excluded, err := filtering.LoadExcludedCandidates(path)
	if err != nil {
		return err
	}

	added := 0
	for _, r := range run.shown {
		if excluded.Add(r.CandidateID, fmt.Sprintf(excludeReasonFmt, run.job.ID)) {
			added++
		}
	}

	if err := excluded.Save(path); err != nil {
		return err
	}
	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("added", added))
	return nil
}

// redacted returns a copy of config without inline secrets.
func redacted(config *Config) Config {
	c := *config
	if c.AI.APIKey != "" {
		c.AI.APIKey = "***"
	}
	if c.Store.Supabase.APIKey != "" {
		c.Store.Supabase.APIKey = "***"
	}
	if c.Cache.Redis.Password != "" {
		c.Cache.Redis.Password = "***"
	}
	return c
}
