package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/jobs"
	"github.com/spigell/job-finder/internal/logger"
)

const (
	PromptPrint          = "Print results"
	PromptReportBySource = "Report by source"
	PromptPostingsToFile = "Dump results to file"
	PromptExit           = "Exit"

	promptAnyNature = "Any"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptPrint, PromptReportBySource, PromptPostingsToFile, PromptExit},
}

var natureLabels = []string{promptAnyNature, jobs.Remote, jobs.Onsite, jobs.Hybrid}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all platforms once and rank the postings",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("position", "p", "", "job title or position to search for (required)")
	searchCmd.Flags().StringP("location", "l", "", "preferred location")
	searchCmd.Flags().StringP("experience", "e", "", "experience, e.g. \"3 years\"")
	searchCmd.Flags().StringP("job-nature", "n", "", "work arrangement: remote, onsite or hybrid")
	searchCmd.Flags().StringP("skills", "s", "", "comma separated skills")
	searchCmd.Flags().String("salary", "", "expected salary")
	searchCmd.Flags().StringSlice("platforms", nil, "platforms to search (default all)")
	searchCmd.Flags().Float64("min-score", 0, "minimum relevance score in [0, 1] (default from config)")
	searchCmd.Flags().BoolP("yes", "y", false, "do not prompt, print the results and exit")

	searchCmd.MarkFlagRequired("position")
	viper.BindPFlag("relevance.min-score", searchCmd.Flags().Lookup("min-score"))
}

func search(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-finder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	autoApprove, _ := cmd.Flags().GetBool("yes")

	criteria, err := criteriaFromFlags(cmd, autoApprove)
	if err != nil {
		logger.Fatal("reading search criteria", zap.Error(err))
	}

	logger.Info("starting the search",
		zap.String("position", criteria.Position),
		zap.String("job_nature", criteria.WorkArrangement),
	)

	postings, err := newSearchService(config, logger).Search(ctx, criteria)
	if err != nil {
		logger.Fatal("collecting postings", zap.Error(err))
	}

	if len(postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	relevance := newRelevance(ctx, config, logger)
	defer relevance.Close()

	postings = relevance.Filter(ctx, postings, criteria, config.Relevance.MinScore)
	if len(postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no relevant postings left"))
		return
	}

	action := PromptPrint
	for {
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of postings", zap.Int("count", len(postings)))

		if err := handleAction(cmd, action, logger, postings); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func handleAction(cmd *cobra.Command, action string, logger *zap.Logger, postings []jobs.Posting) error {
	switch action {
	case PromptPrint:
		pretty, err := json.MarshalIndent(map[string][]jobs.Posting{"relevant_jobs": postings}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(jobs.ReportBySource(postings), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", len(postings)))
		return nil
	case PromptPostingsToFile:
		filename, err := jobs.DumpToTmpFile(postings)
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

func criteriaFromFlags(cmd *cobra.Command, autoApprove bool) (jobs.Criteria, error) {
	flags := cmd.Flags()

	var criteria jobs.Criteria
	for name, target := range map[string]*string{
		"position":   &criteria.Position,
		"location":   &criteria.Location,
		"experience": &criteria.Experience,
		"job-nature": &criteria.WorkArrangement,
		"skills":     &criteria.Skills,
		"salary":     &criteria.Salary,
	} {
		value, err := flags.GetString(name)
		if err != nil {
			return criteria, err
		}
		*target = strings.TrimSpace(value)
	}

	platforms, err := flags.GetStringSlice("platforms")
	if err != nil {
		return criteria, err
	}
	criteria.Platforms = platforms

	if criteria.Position == "" {
		return criteria, errors.New("position is required")
	}

	if criteria.WorkArrangement == "" && !autoApprove {
		nature, err := askJobNature()
		if err != nil {
			return criteria, err
		}
		criteria.WorkArrangement = nature
	}

	return criteria, nil
}

func askJobNature() (string, error) {
	naturePrompt := promptui.Select{
		Label: "Preferred job nature",
		Items: natureLabels,
	}

	_, selected, err := naturePrompt.Run()
	if err != nil {
		return "", err
	}
	if selected == promptAnyNature {
		return "", nil
	}
	return selected, nil
}
