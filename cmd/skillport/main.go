package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jingkaihe/skillport/pkg/config"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/jingkaihe/skillport/pkg/telemetry"
	"github.com/jingkaihe/skillport/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// appConfig is resolved once in the root command's pre-run.
var appConfig *config.Config

var shutdownTracing telemetry.ShutdownFunc = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "skillport",
	Short: "Import agent skills into the canonical skill format",
	Long: `skillport converts skill and rules files written for coding agents
(Claude Code, Cursor, Codex, MCP, Zed, Windsurf, Gemini and Aider) into a
canonical skill directory, scores how much was recovered and tracks whether
the source has changed since the last import.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		appConfig = cfg

		if err := logger.Configure(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
			return errors.Wrap(err, "invalid log level")
		}

		tracingCfg := cfg.Tracing
		tracingCfg.ServiceVersion = version.Get().Version
		shutdown, err := telemetry.InitTracer(cmd.Context(), tracingCfg)
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("failed to flush traces")
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default $HOME/.skillport/config.yaml or ./config.yaml)")
	flags.String("home", "", "skillport home directory (default $HOME/.skillport)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.BoolP("quiet", "q", false, "Only print errors")
	flags.Bool("tracing-enabled", false, "Export OpenTelemetry traces over OTLP/HTTP")
	flags.String("tracing-sampler", "always", "Tracing sampler (always, never, ratio)")
	flags.Float64("tracing-ratio", 1, "Sampling ratio for the ratio sampler")
}

// flagBindings maps persistent flags onto config keys.
var flagBindings = map[string]string{
	"home":            "home",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"tracing-enabled": "tracing.enabled",
	"tracing-sampler": "tracing.sampler_type",
	"tracing-ratio":   "tracing.sampler_ratio",
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		presenter.SetQuiet(quiet)
	}
	return config.Load(v)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagBindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "failed to bind --%s", flag)
			}
		}
	}
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.AddCommand(
		withTracing(importCmd),
		withTracing(statusCmd),
		withTracing(compareCmd),
		registryCmd,
		watchCmd,
		validateCmd,
		schemaCmd,
		historyCmd,
		formatsCmd,
		versionCmd,
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
