package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jingkaihe/skillport/pkg/config"
	"github.com/jingkaihe/skillport/pkg/emitter"
	"github.com/jingkaihe/skillport/pkg/history"
	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/jingkaihe/skillport/pkg/quality"
	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/jingkaihe/skillport/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type ImportConfig struct {
	Format       string
	Output       string
	OutputRoot   string
	Enrich       bool
	RegistryDirs []string
	DryRun       bool
	NoReport     bool
	ShowReport   bool
	JSON         bool
}

func NewImportConfig() *ImportConfig {
	return &ImportConfig{
		Format:       "",
		Output:       "",
		OutputRoot:   "skills",
		Enrich:       false,
		RegistryDirs: []string{},
		DryRun:       false,
		NoReport:     false,
		ShowReport:   false,
		JSON:         false,
	}
}

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: "Import a skill or rules file into a canonical skill directory",
	Long: `Import a skill or rules file written for another agent into a canonical
skill directory containing skill.yaml, instructions/ and IMPORT_REPORT.md.

The format is detected from the file name unless --format is given. With
--enrich, dependencies are checked against the service manifests found in
the registry paths.

Examples:
  skillport import .claude/skills/mail/SKILL.md --enrich
  skillport import .cursorrules --output skills/inbox-helper
  skillport import notes.md --format cursor --dry-run`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := getImportConfigFromFlags(cmd)

		outcome, err := runImport(ctx, args[0], cfg, appConfig)
		if err != nil {
			exitWithError(ctx, err, "import failed")
		}
		if err := printImportOutcome(outcome, cfg); err != nil {
			exitWithError(ctx, err, "failed to print import result")
		}
	},
}

func init() {
	defaults := NewImportConfig()
	flags := importCmd.Flags()
	flags.StringP("format", "f", defaults.Format, fmt.Sprintf("Source format (%s)", strings.Join(skill.FormatKeys(), ", ")))
	flags.StringP("output", "o", defaults.Output, "Canonical skill directory (default <output-root>/<skill-name>)")
	flags.String("output-root", defaults.OutputRoot, "Parent directory for derived output directories")
	flags.BoolP("enrich", "e", defaults.Enrich, "Verify dependencies against the service registry")
	flags.StringSlice("registry", defaults.RegistryDirs, "Registry directories to search (repeatable)")
	flags.Bool("dry-run", defaults.DryRun, "Analyze without writing anything")
	flags.Bool("no-report", defaults.NoReport, "Skip writing IMPORT_REPORT.md")
	flags.Bool("show-report", defaults.ShowReport, "Render the import report in the terminal")
	flags.Bool("json", defaults.JSON, "Print the result as JSON")
}

func getImportConfigFromFlags(cmd *cobra.Command) *ImportConfig {
	config := NewImportConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if root, err := cmd.Flags().GetString("output-root"); err == nil {
		config.OutputRoot = root
	}
	if enrich, err := cmd.Flags().GetBool("enrich"); err == nil {
		config.Enrich = enrich
	}
	if dirs, err := cmd.Flags().GetStringSlice("registry"); err == nil {
		config.RegistryDirs = dirs
	}
	if dryRun, err := cmd.Flags().GetBool("dry-run"); err == nil {
		config.DryRun = dryRun
	}
	if noReport, err := cmd.Flags().GetBool("no-report"); err == nil {
		config.NoReport = noReport
	}
	if showReport, err := cmd.Flags().GetBool("show-report"); err == nil {
		config.ShowReport = showReport
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

// importOutcome is what the import command did.
type importOutcome struct {
	Result  *importer.Result
	Written []string
	Report  string
}

// loadRegistry loads manifests from the explicit dirs, falling back to the
// configured registry paths.
func loadRegistry(ctx context.Context, dirs []string, app *config.Config) (*registry.Registry, error) {
	var roots []registry.Root
	for _, d := range dirs {
		roots = append(roots, registry.DirRoot(d))
	}
	patterns := registry.DefaultPatterns
	if app != nil {
		if len(roots) == 0 {
			roots = app.RegistryRoots()
		}
		if len(app.Registry.Patterns) > 0 {
			patterns = app.Registry.Patterns
		}
	}
	return registry.Load(ctx, roots, patterns)
}

func runImport(ctx context.Context, source string, cfg *ImportConfig, app *config.Config) (*importOutcome, error) {
	opts := importer.Options{
		Path:       source,
		Format:     cfg.Format,
		OutputDir:  cfg.Output,
		OutputRoot: cfg.OutputRoot,
	}

	if cfg.Enrich || (app != nil && app.Registry.Enabled) {
		reg, err := loadRegistry(ctx, cfg.RegistryDirs, app)
		if err != nil {
			if reg == nil {
				return nil, errors.Wrap(err, "failed to load service registry")
			}
			logger.G(ctx).WithError(err).Warn("some service manifests were skipped")
		}
		logger.G(ctx).WithField("services", reg.Len()).Debug("loaded service registry")
		opts.Registry = reg
	}

	res, err := importer.Import(ctx, opts)
	if err != nil {
		return nil, err
	}
	outcome := &importOutcome{Result: res}

	toolVersion := version.Get().Version
	if cfg.ShowReport || cfg.DryRun {
		report, err := emitter.RenderReport(res, toolVersion)
		if err != nil {
			return nil, err
		}
		outcome.Report = string(report)
	}
	if cfg.DryRun {
		return outcome, nil
	}

	written, err := emitter.Write(ctx, res, emitter.Options{ToolVersion: toolVersion, SkipReport: cfg.NoReport})
	if err != nil {
		return nil, err
	}
	outcome.Written = written

	if app != nil && app.History.Enabled {
		recordHistory(ctx, app.History.Path, history.RunFromResult(res, toolVersion))
	}
	return outcome, nil
}

// recordHistory adds run to the ledger. A ledger failure never fails the
// import.
func recordHistory(ctx context.Context, path string, run history.Run) {
	log := logger.G(ctx).WithField("path", path)
	store, err := history.Open(ctx, path)
	if err != nil {
		log.WithError(err).Warn("failed to open import history")
		return
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		log.WithError(err).Warn("failed to record import")
	}
}

func printImportOutcome(outcome *importOutcome, cfg *ImportConfig) error {
	res := outcome.Result
	if cfg.JSON {
		return printJSON(importSummary(outcome))
	}

	s := res.Skill
	a := res.Assessment
	presenter.Section(fmt.Sprintf("Imported %s from %s", s.CanonicalName(), s.Source.Format.DisplayName()))
	presenter.Field("source", s.Source.Path)
	presenter.Field("output", res.OutputDir)
	presenter.Field("import id", res.ID)
	presenter.Score(a.Score, string(a.Grade), a.Grade.Description())
	presenter.Field("confidence", fmt.Sprintf("%d%% overall", s.OverallConfidence()))
	presenter.Field("name", fieldLine(s.Name.Value, s.Name.Confidence))
	presenter.Field("version", fieldLine(s.Version.Value, s.Version.Confidence))
	presenter.Field("description", fieldLine(truncate(s.Description.Value, 50), s.Description.Confidence))
	presenter.Field("instructions", fieldLine(fmt.Sprintf("%d chars", len(s.Instructions.Value)), s.Instructions.Confidence))
	presenter.Info("")
	presenter.Field("breakdown", fmt.Sprintf("metadata %d, dependencies %d, instructions %d, triggers %d, config %d",
		a.Breakdown.Metadata, a.Breakdown.Dependencies, a.Breakdown.Instructions, a.Breakdown.Triggers, a.Breakdown.Config))

	if res.Enrichment != nil && len(res.Enrichment.Unknown) > 0 {
		presenter.Warning("Services not in the registry: " + strings.Join(res.Enrichment.Unknown, ", "))
	}
	if n := len(a.Issues); n > 0 {
		presenter.Warning(fmt.Sprintf("%d issue(s) need review, see %s", n, emitter.ReportFileName))
	}

	presenter.Field("sync", string(res.Sync.Status))
	presenter.Field("next", res.Sync.Recommendation.Description)

	if cfg.DryRun {
		presenter.Info("Dry run, nothing was written.")
	} else {
		presenter.Success(fmt.Sprintf("Wrote %d files to %s", len(outcome.Written), res.OutputDir))
	}
	if outcome.Report != "" && (cfg.ShowReport || cfg.DryRun) {
		presenter.Separator()
		presenter.Markdown(outcome.Report)
	}
	return nil
}

func fieldLine(value string, c skill.Confidence) string {
	if value == "" {
		value = "(empty)"
	}
	return fmt.Sprintf("%s [%s]", value, c)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type importSummaryJSON struct {
	ID         string               `json:"id"`
	Skill      string               `json:"skill"`
	Source     string               `json:"source"`
	Format     string               `json:"format"`
	OutputDir  string               `json:"outputDir"`
	Score      int                  `json:"score"`
	Grade      string               `json:"grade"`
	Breakdown  quality.Breakdown    `json:"breakdown"`
	Issues     []quality.Issue      `json:"issues"`
	Sync       *syncstate.Analysis  `json:"sync"`
	Enrichment *registry.Enrichment `json:"enrichment,omitempty"`
	Written    []string             `json:"written,omitempty"`
}

func importSummary(outcome *importOutcome) importSummaryJSON {
	res := outcome.Result
	return importSummaryJSON{
		ID:         res.ID,
		Skill:      res.Skill.CanonicalName(),
		Source:     res.Skill.Source.Path,
		Format:     string(res.Skill.Source.Format),
		OutputDir:  res.OutputDir,
		Score:      res.Assessment.Score,
		Grade:      string(res.Assessment.Grade),
		Breakdown:  res.Assessment.Breakdown,
		Issues:     res.Assessment.Issues,
		Sync:       res.Sync,
		Enrichment: res.Enrichment,
		Written:    outcome.Written,
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
