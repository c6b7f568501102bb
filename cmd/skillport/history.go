package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jingkaihe/skillport/pkg/history"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type HistoryConfig struct {
	Skill  string
	Source string
	Limit  int
	JSON   bool
}

func NewHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Skill:  "",
		Source: "",
		Limit:  20,
		JSON:   false,
	}
}

var historyCmd = &cobra.Command{
	Use:   "history [source]",
	Short: "List past imports",
	Long: `List imports recorded in the history database, newest first.

Examples:
  skillport history
  skillport history .cursorrules
  skillport history --skill foo-bar --limit 5`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := getHistoryConfigFromFlags(cmd)
		if len(args) == 1 {
			cfg.Source = args[0]
		}

		if appConfig == nil {
			exitWithError(ctx, errors.New("configuration not loaded"), "history failed")
		}
		runs, err := listHistory(ctx, appConfig.History.Path, cfg)
		if err != nil {
			exitWithError(ctx, err, "failed to read import history")
		}
		if cfg.JSON {
			if err := printJSON(runs); err != nil {
				exitWithError(ctx, err, "failed to print history")
			}
			return
		}
		if len(runs) == 0 {
			presenter.Info("No imports recorded")
			return
		}
		printRuns(runs)
	},
}

func init() {
	defaults := NewHistoryConfig()
	historyCmd.Flags().String("skill", defaults.Skill, "Only show imports of this skill")
	historyCmd.Flags().String("source", defaults.Source, "Only show imports of this source path")
	historyCmd.Flags().IntP("limit", "n", defaults.Limit, "Maximum number of imports to show")
	historyCmd.Flags().Bool("json", defaults.JSON, "Print as JSON")
}

func getHistoryConfigFromFlags(cmd *cobra.Command) *HistoryConfig {
	config := NewHistoryConfig()
	if skill, err := cmd.Flags().GetString("skill"); err == nil {
		config.Skill = skill
	}
	if source, err := cmd.Flags().GetString("source"); err == nil {
		config.Source = source
	}
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func listHistory(ctx context.Context, path string, cfg *HistoryConfig) ([]history.Run, error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.List(ctx, history.Query{SkillName: cfg.Skill, SourcePath: cfg.Source, Limit: cfg.Limit})
}

func printRuns(runs []history.Run) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IMPORTED\tSKILL\tFORMAT\tSCORE\tSTATUS\tSOURCE")
	fmt.Fprintln(w, "--------\t-----\t------\t-----\t------\t------")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d (%s)\t%s\t%s\n",
			r.ImportedAt.Local().Format("2006-01-02 15:04"),
			r.SkillName, r.SourceFormat, r.Score, r.Grade, r.SyncStatus, r.SourcePath)
	}
	w.Flush()
}
