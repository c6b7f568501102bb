package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type WatchConfig struct {
	Import   *ImportConfig
	Debounce time.Duration
}

func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		Import:   NewImportConfig(),
		Debounce: 500 * time.Millisecond,
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch <source>...",
	Short: "Re-import sources whenever they change",
	Long: `Watch one or more source files and re-import each one after it changes.
Rapid successive writes are collapsed into a single import.

Examples:
  skillport watch .cursorrules --output skills/inbox-helper
  skillport watch .claude/skills/*/SKILL.md --enrich`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := getWatchConfigFromFlags(cmd)
		if len(args) > 1 && cfg.Import.Output != "" {
			exitWithError(ctx, errors.New("--output cannot be used with more than one source"), "watch failed")
		}

		w := &sourceWatcher{
			Paths:    args,
			Debounce: cfg.Debounce,
			Handle: func(ctx context.Context, path string) {
				outcome, err := runImport(ctx, path, cfg.Import, appConfig)
				if err != nil {
					presenter.Error(err, "re-import of "+path+" failed")
					return
				}
				res := outcome.Result
				presenter.Success(fmt.Sprintf("%s: %s -> %s (%d, grade %s, %s)",
					time.Now().Format("15:04:05"), path, res.OutputDir,
					res.Assessment.Score, res.Assessment.Grade, res.Sync.Status))
			},
			Ready: func() {
				presenter.Info(fmt.Sprintf("Watching %d source(s), press Ctrl+C to stop", len(args)))
			},
		}
		if err := w.Run(ctx); err != nil {
			exitWithError(ctx, err, "watch failed")
		}
	},
}

func init() {
	defaults := NewWatchConfig()
	flags := watchCmd.Flags()
	flags.StringP("format", "f", defaults.Import.Format, "Source format override")
	flags.StringP("output", "o", defaults.Import.Output, "Canonical skill directory (single source only)")
	flags.String("output-root", defaults.Import.OutputRoot, "Parent directory for derived output directories")
	flags.BoolP("enrich", "e", defaults.Import.Enrich, "Verify dependencies against the service registry")
	flags.StringSlice("registry", defaults.Import.RegistryDirs, "Registry directories to search (repeatable)")
	flags.Bool("no-report", defaults.Import.NoReport, "Skip writing IMPORT_REPORT.md")
	flags.Duration("debounce", defaults.Debounce, "Quiet period before a change is imported")
}

func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()
	config.Import = getImportConfigFromFlags(cmd)
	if appConfig != nil && appConfig.Watch.Debounce > 0 {
		config.Debounce = appConfig.Watch.Debounce
	}
	if cmd.Flags().Changed("debounce") {
		if debounce, err := cmd.Flags().GetDuration("debounce"); err == nil {
			config.Debounce = debounce
		}
	}
	return config
}

// sourceWatcher calls Handle once per burst of changes to any of Paths.
type sourceWatcher struct {
	Paths    []string
	Debounce time.Duration
	Handle   func(ctx context.Context, path string)
	// Ready is called once the watches are in place.
	Ready func()
}

// Run blocks until ctx is done. Parent directories are watched rather than
// the files so editors that replace files on save are still seen.
func (w *sourceWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer watcher.Close()

	targets := make(map[string]string, len(w.Paths))
	dirs := map[string]bool{}
	for _, p := range w.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", p)
		}
		targets[abs] = p
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}

	if w.Ready != nil {
		w.Ready()
	}

	log := logger.G(ctx)
	fired := make(chan string)
	done := make(chan struct{})
	defer close(done)
	timers := map[string]*time.Timer{}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			path, watched := targets[abs]
			if !watched {
				continue
			}
			log.WithField("path", path).WithField("op", event.Op.String()).Debug("source changed")

			if t, ok := timers[abs]; ok {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(w.Debounce, func() {
				select {
				case fired <- path:
				case <-done:
				}
			})

		case path := <-fired:
			w.Handle(ctx, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		}
	}
}
