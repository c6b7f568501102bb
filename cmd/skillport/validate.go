package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jingkaihe/skillport/pkg/manifest"
	"github.com/jingkaihe/skillport/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <skill-dir | skill.yaml>",
	Short: "Validate a canonical skill manifest",
	Long: `Check a canonical skill.yaml against the manifest rules: required fields,
name and version syntax, daemon and trigger shapes, and that the referenced
instruction files exist. Exits with status 1 when errors are found.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		result, err := runValidate(args[0])
		if err != nil {
			exitWithError(ctx, err, "validation failed")
		}

		for _, w := range result.Warnings {
			presenter.Warning(w.String())
		}
		if !result.Valid() {
			for _, e := range result.Errors {
				presenter.Error(errors.New(e.Message), e.Field)
			}
			exitWithError(ctx, errors.Errorf("%d error(s)", len(result.Errors)), "manifest is invalid")
		}
		presenter.Success(fmt.Sprintf("%s is valid", args[0]))
	},
}

// manifestPath accepts a skill directory or the manifest file itself.
func manifestPath(target string) (path, baseDir string, err error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to stat %s", target)
	}
	if info.IsDir() {
		return filepath.Join(target, manifest.FileName), target, nil
	}
	return target, filepath.Dir(target), nil
}

func runValidate(target string) (*manifest.Result, error) {
	path, baseDir, err := manifestPath(target)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return manifest.Validate(m, baseDir), nil
}
