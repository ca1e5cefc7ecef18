package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/ats-matcher/internal/logger"
	"go.uber.org/zap"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List published jobs and the number of candidates",
	Run: func(_ *cobra.Command, _ []string) {
		listJobs()
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func listJobs() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st, err := newStore(config.Store, logger)
	if err != nil {
		logger.Fatal("creating a store", zap.Error(err))
	}

	jobs, err := st.FetchPublishedJobs(ctx)
	if err != nil {
		logger.Fatal("getting published jobs", zap.Error(err))
	}

	candidates, err := st.FetchAllCandidates(ctx)
	if err != nil {
		logger.Fatal("getting candidates", zap.Error(err))
	}

	for _, j := range jobs {
		logger.Info("job",
			zap.String("id", j.ID),
			zap.String("title", j.Title),
			zap.Strings("requirements", j.Requirements),
		)
	}
	logger.Info("published jobs", zap.Int("jobs", len(jobs)), zap.Int("candidates", len(candidates)))
}
