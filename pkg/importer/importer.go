// Package importer runs the import pipeline: format resolution, parsing,
// registry enrichment, quality assessment and sync analysis.
package importer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/jingkaihe/skillport/pkg/parsers"
	"github.com/jingkaihe/skillport/pkg/quality"
	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/jingkaihe/skillport/pkg/telemetry"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ErrSourceNotFound is returned when the input document does not exist.
var ErrSourceNotFound = errors.New("source not found")

// FileSystem reads source documents.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// Clock supplies the import timestamp.
type Clock interface {
	Now() time.Time
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Options configures one import.
type Options struct {
	// Path is the source document.
	Path string
	// Format overrides format detection when non-empty.
	Format string
	// OutputDir is the canonical skill directory. Its sync metadata, if
	// any, is compared with the new import.
	OutputDir string
	// OutputRoot is used when OutputDir is empty: the output directory
	// becomes OutputRoot/<canonical skill name>.
	OutputRoot string
	// Registry enables enrichment when non-nil.
	Registry *registry.Registry

	FS    FileSystem
	Clock Clock
}

// Result is everything an import produced. Nothing has been written yet.
type Result struct {
	ID         string
	Skill      *skill.Skill
	Enrichment *registry.Enrichment
	Assessment *quality.Assessment
	Sync       *syncstate.Analysis
	// SourceContent is the raw input, kept for the verbatim copy.
	SourceContent []byte
	OutputDir     string
}

// Import runs the pipeline on a single document.
func Import(ctx context.Context, opts Options) (*Result, error) {
	if opts.FS == nil {
		opts.FS = osFS{}
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	log := logger.G(ctx).WithField("source", opts.Path)

	result := &Result{ID: uuid.NewString(), OutputDir: opts.OutputDir}
	now := opts.Clock.Now()

	content, err := opts.FS.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrSourceNotFound, "%s", opts.Path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", opts.Path)
	}
	result.SourceContent = content

	format, err := parsers.Resolve(opts.Path, opts.Format)
	if err != nil {
		return nil, err
	}
	log = log.WithField("format", format)

	err = telemetry.WithSpan(ctx, "importer.parse", func(ctx context.Context) error {
		doc := parsers.Document{
			Path:       opts.Path,
			Content:    content,
			ImportedAt: now,
			Sibling: func(name string) ([]byte, error) {
				return opts.FS.ReadFile(filepath.Join(filepath.Dir(opts.Path), name))
			},
		}
		s, err := parsers.Parse(format, doc)
		if err != nil {
			return err
		}
		result.Skill = s
		return nil
	}, attribute.String("format", string(format)))
	if err != nil {
		return nil, err
	}
	log.WithField("dependencies", len(result.Skill.Dependencies)).Debug("parsed skill")

	if opts.Registry != nil {
		telemetry.WithSpanFunc(ctx, "importer.enrich", func(ctx context.Context) {
			result.Enrichment = registry.Enrich(result.Skill, opts.Registry)
			for _, name := range result.Enrichment.Unknown {
				telemetry.AddEvent(ctx, "unknown service", attribute.String("service", name))
			}
		})
		log.WithField("verified", result.Enrichment.Verified).
			WithField("unknown", result.Enrichment.Unknown).
			Info("enriched dependencies from registry")
	}

	telemetry.WithSpanFunc(ctx, "importer.assess", func(ctx context.Context) {
		result.Assessment = quality.Assess(result.Skill, result.Enrichment)
		telemetry.SetAttributes(ctx,
			attribute.Int("quality.score", result.Assessment.Score),
			attribute.String("quality.grade", string(result.Assessment.Grade)),
		)
	})

	if result.OutputDir == "" && opts.OutputRoot != "" {
		result.OutputDir = filepath.Join(opts.OutputRoot, result.Skill.CanonicalName())
	}

	var prior *syncstate.Metadata
	if result.OutputDir != "" {
		prior, err = syncstate.NewStore(result.OutputDir).Read()
		if err != nil {
			log.WithError(err).Warn("ignoring unreadable sync metadata")
			prior = nil
		}
	}
	result.Sync = syncstate.Analyze(result.Skill, prior, result.OutputDir, now)
	log.WithField("status", result.Sync.Status).Debug("analyzed sync state")

	return result, nil
}

// Metadata returns the sync metadata to persist for this import. The source
// path is stored absolute so status checks work from any directory.
func (r *Result) Metadata(toolVersion string) *syncstate.Metadata {
	sourcePath := r.Skill.Source.Path
	if abs, err := filepath.Abs(sourcePath); err == nil {
		sourcePath = abs
	}
	return &syncstate.Metadata{
		SourcePath:   sourcePath,
		SourceFormat: r.Skill.Source.Format,
		Fingerprint:  r.Sync.Current,
		LastSync:     r.Skill.Source.ImportedAt,
		Direction:    syncstate.DirectionImport,
		ImportID:     r.ID,
		ToolVersion:  toolVersion,
	}
}
