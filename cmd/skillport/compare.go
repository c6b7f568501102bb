package main

import (
	"context"

	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/spf13/cobra"
)

type CompareConfig struct {
	Format  string
	Patches bool
	JSON    bool
}

func NewCompareConfig() *CompareConfig {
	return &CompareConfig{
		Format:  "",
		Patches: true,
		JSON:    false,
	}
}

var compareCmd = &cobra.Command{
	Use:   "compare <old> <new>",
	Short: "Compare the skills parsed from two source files",
	Long: `Parse two source files and list the field-level differences between the
resulting skills, with a unified diff for instruction changes.

Examples:
  skillport compare old/.cursorrules .cursorrules
  skillport compare v1/SKILL.md v2/SKILL.md --no-patches`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := getCompareConfigFromFlags(cmd)

		diffs, err := runCompare(ctx, args[0], args[1], cfg)
		if err != nil {
			exitWithError(ctx, err, "compare failed")
		}
		if cfg.JSON {
			if err := printJSON(diffs); err != nil {
				exitWithError(ctx, err, "failed to print diffs")
			}
			return
		}
		if len(diffs) == 0 {
			presenter.Success("No differences")
			return
		}
		printDiffs(diffs, cfg.Patches)
	},
}

func init() {
	defaults := NewCompareConfig()
	compareCmd.Flags().StringP("format", "f", defaults.Format, "Format override applied to both sources")
	compareCmd.Flags().Bool("no-patches", !defaults.Patches, "Hide unified diffs")
	compareCmd.Flags().Bool("json", defaults.JSON, "Print the diffs as JSON")
}

func getCompareConfigFromFlags(cmd *cobra.Command) *CompareConfig {
	config := NewCompareConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if noPatches, err := cmd.Flags().GetBool("no-patches"); err == nil {
		config.Patches = !noPatches
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func runCompare(ctx context.Context, oldPath, newPath string, cfg *CompareConfig) ([]syncstate.FieldDiff, error) {
	prior, err := importer.Import(ctx, importer.Options{Path: oldPath, Format: cfg.Format})
	if err != nil {
		return nil, err
	}
	current, err := importer.Import(ctx, importer.Options{Path: newPath, Format: cfg.Format})
	if err != nil {
		return nil, err
	}
	return syncstate.Compare(prior.Skill, current.Skill), nil
}
