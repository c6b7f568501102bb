package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type StatusConfig struct {
	Output string
	Format string
	JSON   bool
}

func NewStatusConfig() *StatusConfig {
	return &StatusConfig{
		Output: "",
		Format: "",
		JSON:   false,
	}
}

var statusCmd = &cobra.Command{
	Use:   "status <skill-dir | source>",
	Short: "Show whether a source changed since it was imported",
	Long: `Show the sync status between a source file and its canonical skill.

Given a canonical skill directory, the source recorded in its .sync.json is
re-parsed and compared. Given a source file, --output names the canonical
directory to compare against. Nothing is written.

Only the source is inspected: it is compared with the fingerprint stored by
the last import, so edits made to the canonical copy are not detected.

Examples:
  skillport status skills/foo-bar
  skillport status .cursorrules --output skills/inbox-helper`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := getStatusConfigFromFlags(cmd)

		analysis, err := runStatus(ctx, args[0], cfg)
		if err != nil {
			exitWithError(ctx, err, "status failed")
		}
		if cfg.JSON {
			if err := printJSON(analysis); err != nil {
				exitWithError(ctx, err, "failed to print status")
			}
			return
		}
		printAnalysis(analysis)
	},
}

func init() {
	defaults := NewStatusConfig()
	statusCmd.Flags().StringP("output", "o", defaults.Output, "Canonical skill directory when the argument is a source file")
	statusCmd.Flags().StringP("format", "f", defaults.Format, "Source format override")
	statusCmd.Flags().Bool("json", defaults.JSON, "Print the analysis as JSON")
}

func getStatusConfigFromFlags(cmd *cobra.Command) *StatusConfig {
	config := NewStatusConfig()
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

// resolveStatusTarget returns the source path, format and canonical
// directory for target.
func resolveStatusTarget(target string, cfg *StatusConfig) (source, format, outputDir string, err error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", "", "", errors.Wrapf(err, "failed to stat %s", target)
	}
	if !info.IsDir() {
		if cfg.Output == "" {
			return "", "", "", errors.New("--output is required when checking a source file")
		}
		return target, cfg.Format, cfg.Output, nil
	}

	meta, err := syncstate.NewStore(target).Read()
	if err != nil {
		return "", "", "", err
	}
	if meta == nil {
		return "", "", "", errors.Errorf("%s has no %s, import it first", target, syncstate.FileName)
	}
	format = cfg.Format
	if format == "" {
		format = string(meta.SourceFormat)
	}
	source = meta.SourcePath
	if !filepath.IsAbs(source) {
		if _, err := os.Stat(source); err != nil {
			source = filepath.Join(target, source)
		}
	}
	return source, format, target, nil
}

func runStatus(ctx context.Context, target string, cfg *StatusConfig) (*syncstate.Analysis, error) {
	source, format, outputDir, err := resolveStatusTarget(target, cfg)
	if err != nil {
		return nil, err
	}
	res, err := importer.Import(ctx, importer.Options{Path: source, Format: format, OutputDir: outputDir})
	if err != nil {
		return nil, err
	}
	return res.Sync, nil
}

func printAnalysis(a *syncstate.Analysis) {
	presenter.Section("Sync Status")
	presenter.Field("status", string(a.Status))
	presenter.Field("action", string(a.Recommendation.Action))
	presenter.Field("fingerprint", a.Current.CombinedHash)
	if a.LastSync != nil {
		presenter.Field("last sync", a.LastSync.Format("2006-01-02 15:04:05 MST"))
	}

	switch a.Status {
	case syncstate.StatusInSync:
		presenter.Success(a.Recommendation.Description)
	default:
		presenter.Warning(a.Recommendation.Description)
	}
	if a.Recommendation.Command != "" {
		presenter.Info("  " + a.Recommendation.Command)
	}
	printDiffs(a.Diffs, false)
}

func printDiffs(diffs []syncstate.FieldDiff, withPatches bool) {
	if len(diffs) == 0 {
		return
	}
	presenter.Section("Changes")
	for _, d := range diffs {
		line := fmt.Sprintf("%s (%s, %s)", d.Field, d.ChangeType, d.Significance)
		if d.Patch == "" && (d.OldValue != "" || d.NewValue != "") {
			line += fmt.Sprintf(": %q -> %q", d.OldValue, d.NewValue)
		}
		presenter.List([]string{line})
		if withPatches && d.Patch != "" {
			presenter.Info(d.Patch)
		}
	}
}
