package emitter

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/jingkaihe/skillport/pkg/manifest"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/jingkaihe/skillport/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// ReportFileName is the import report written next to skill.yaml.
	ReportFileName = "IMPORT_REPORT.md"
	// CoreInstructionsFile is the canonical instructions path.
	CoreInstructionsFile = "instructions/core.md"
)

// Options configures Write.
type Options struct {
	ToolVersion string
	// SkipReport suppresses IMPORT_REPORT.md.
	SkipReport bool
}

// Write lays out the canonical skill directory for res under
// res.OutputDir and records sync metadata. It returns the written paths
// relative to the output directory.
func Write(ctx context.Context, res *importer.Result, opts Options) ([]string, error) {
	if res.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}

	var written []string
	err := telemetry.WithSpan(ctx, "emitter.write", func(ctx context.Context) error {
		files, err := render(res, opts)
		if err != nil {
			return err
		}

		for _, f := range files {
			path := filepath.Join(res.OutputDir, f.name)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrapf(err, "failed to create directory for %s", f.name)
			}
			if err := os.WriteFile(path, f.content, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", f.name)
			}
			written = append(written, f.name)
		}

		store := syncstate.NewStore(res.OutputDir)
		if err := store.Write(res.Metadata(opts.ToolVersion)); err != nil {
			return err
		}
		written = append(written, syncstate.FileName)
		return nil
	}, attribute.String("output", res.OutputDir))
	if err != nil {
		return nil, err
	}

	logger.G(ctx).
		WithField("output", res.OutputDir).
		WithField("files", len(written)).
		Info("wrote canonical skill")
	return written, nil
}

type outputFile struct {
	name    string
	content []byte
}

func render(res *importer.Result, opts Options) ([]outputFile, error) {
	yamlContent, err := RenderManifest(res)
	if err != nil {
		return nil, err
	}

	files := []outputFile{
		{name: manifest.FileName, content: yamlContent},
		{name: CoreInstructionsFile, content: []byte(res.Skill.Instructions.Value + "\n")},
		{name: filepath.Join("instructions", sourceCopyName(res.Skill)), content: res.SourceContent},
		{name: filepath.Join("workflows", ".gitkeep"), content: []byte{}},
	}

	if !opts.SkipReport {
		report, err := RenderReport(res, opts.ToolVersion)
		if err != nil {
			return nil, err
		}
		files = append(files, outputFile{name: ReportFileName, content: report})
	}
	return files, nil
}
