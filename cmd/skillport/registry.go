package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jingkaihe/skillport/pkg/config"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type RegistryConfig struct {
	Dirs []string
	JSON bool
}

func NewRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		Dirs: []string{},
		JSON: false,
	}
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the service registry used for enrichment",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List services found in the registry",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		cfg := getRegistryConfigFromFlags(cmd)

		reg, err := loadRegistry(ctx, cfg.Dirs, appConfig)
		if err != nil {
			if reg == nil {
				exitWithError(ctx, err, "failed to load registry")
			}
			presenter.Warning(err.Error())
		}
		if cfg.JSON {
			if err := printJSON(reg.Services()); err != nil {
				exitWithError(ctx, err, "failed to print services")
			}
			return
		}
		if reg.Len() == 0 {
			presenter.Info("No services found in " + strings.Join(registryDirs(cfg.Dirs, appConfig), ", "))
			return
		}
		printServices(reg.Services())
	},
}

var registryShowCmd = &cobra.Command{
	Use:   "show <service>",
	Short: "Show the methods, auth and platforms of a service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := getRegistryConfigFromFlags(cmd)

		svc, err := findService(ctx, args[0], cfg, appConfig)
		if err != nil {
			exitWithError(ctx, err, "failed to show service")
		}
		if cfg.JSON {
			if err := printJSON(svc); err != nil {
				exitWithError(ctx, err, "failed to print service")
			}
			return
		}
		printService(svc)
	},
}

func init() {
	defaults := NewRegistryConfig()
	for _, c := range []*cobra.Command{registryListCmd, registryShowCmd} {
		c.Flags().StringSlice("registry", defaults.Dirs, "Registry directories to search (repeatable)")
		c.Flags().Bool("json", defaults.JSON, "Print as JSON")
	}
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryShowCmd)
}

func getRegistryConfigFromFlags(cmd *cobra.Command) *RegistryConfig {
	config := NewRegistryConfig()
	if dirs, err := cmd.Flags().GetStringSlice("registry"); err == nil {
		config.Dirs = dirs
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func registryDirs(dirs []string, app *config.Config) []string {
	if len(dirs) > 0 || app == nil {
		return dirs
	}
	return app.Registry.Paths
}

func findService(ctx context.Context, name string, cfg *RegistryConfig, app *config.Config) (*registry.Manifest, error) {
	reg, err := loadRegistry(ctx, cfg.Dirs, app)
	if reg == nil {
		return nil, err
	}
	svc, ok := reg.Service(name)
	if !ok {
		return nil, errors.Errorf("service %q not found in registry", name)
	}
	return svc, nil
}

func printServices(services []*registry.Manifest) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tMETHODS\tAUTH\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-------\t-------\t----\t-----------")
	for _, svc := range services {
		auth := "-"
		if svc.Auth != nil && svc.Auth.Type != "" {
			auth = svc.Auth.Type
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", svc.Name, svc.Version, len(svc.Methods), auth, svc.Description)
	}
	w.Flush()
}

func printService(svc *registry.Manifest) {
	presenter.Section(svc.Name)
	presenter.Field("version", svc.Version)
	presenter.Field("description", svc.Description)
	if svc.Auth != nil {
		auth := svc.Auth.Type
		if svc.Auth.Provider != "" {
			auth += " (" + svc.Auth.Provider + ")"
		}
		presenter.Field("auth", auth)
		if len(svc.Auth.Scopes) > 0 {
			presenter.Field("scopes", strings.Join(svc.Auth.Scopes, ", "))
		}
	}
	if len(svc.Platforms) > 0 {
		presenter.Field("platforms", strings.Join(svc.Platforms, ", "))
	}

	methods := make([]string, 0, len(svc.Methods))
	for _, m := range svc.Methods {
		line := m.Name
		if m.Description != "" {
			line += ": " + m.Description
		}
		methods = append(methods, line)
	}
	sort.Strings(methods)
	presenter.Info("")
	presenter.Section("Methods")
	presenter.List(methods)
}
