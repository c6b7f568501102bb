// Package history keeps a ledger of import runs in SQLite so users can see
// how a skill's quality and sync state changed over time.
package history

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jingkaihe/skillport/pkg/db"
	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Run is one recorded import.
type Run struct {
	ID           string    `db:"id" json:"id"`
	SkillName    string    `db:"skill_name" json:"skillName"`
	SourcePath   string    `db:"source_path" json:"sourcePath"`
	SourceFormat string    `db:"source_format" json:"sourceFormat"`
	OutputDir    string    `db:"output_dir" json:"outputDir"`
	Score        int       `db:"score" json:"score"`
	Grade        string    `db:"grade" json:"grade"`
	SyncStatus   string    `db:"sync_status" json:"syncStatus"`
	CombinedHash string    `db:"combined_hash" json:"combinedHash"`
	ToolVersion  string    `db:"tool_version" json:"toolVersion"`
	ImportedAt   time.Time `db:"imported_at" json:"importedAt"`
}

// RunFromResult flattens an import result into a ledger row.
func RunFromResult(res *importer.Result, toolVersion string) Run {
	return Run{
		ID:           res.ID,
		SkillName:    res.Skill.CanonicalName(),
		SourcePath:   res.Skill.Source.Path,
		SourceFormat: string(res.Skill.Source.Format),
		OutputDir:    res.OutputDir,
		Score:        res.Assessment.Score,
		Grade:        string(res.Assessment.Grade),
		SyncStatus:   string(res.Sync.Status),
		CombinedHash: res.Sync.Current.CombinedHash,
		ToolVersion:  toolVersion,
		ImportedAt:   res.Skill.Source.ImportedAt,
	}
}

// Store reads and writes the ledger.
type Store struct {
	db *sqlx.DB
}

// Open opens the ledger at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := db.NewMigrationRunner(conn).Run(ctx, Migrations()); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{db: conn}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a run. Recording the same ID twice replaces the row.
func (s *Store) Record(ctx context.Context, run Run) error {
	err := retry.Do(
		func() error {
			_, err := s.db.NamedExecContext(ctx, `
				INSERT OR REPLACE INTO import_runs (
					id, skill_name, source_path, source_format, output_dir,
					score, grade, sync_status, combined_hash, tool_version, imported_at
				) VALUES (
					:id, :skill_name, :source_path, :source_format, :output_dir,
					:score, :grade, :sync_status, :combined_hash, :tool_version, :imported_at
				)`, run)
			return err
		},
		retry.RetryIf(isBusy),
		retry.Attempts(recordAttempts),
		retry.Delay(50*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Debug("history database busy, retrying")
		}),
	)
	return errors.Wrap(err, "failed to record import run")
}

// recordAttempts bounds retries while another process holds the write lock.
const recordAttempts = 5

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// Query filters List.
type Query struct {
	SkillName  string
	SourcePath string
	Limit      int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Run, error) {
	stmt := "SELECT * FROM import_runs WHERE 1=1"
	var args []interface{}
	if q.SkillName != "" {
		stmt += " AND skill_name = ?"
		args = append(args, q.SkillName)
	}
	if q.SourcePath != "" {
		stmt += " AND source_path = ?"
		args = append(args, q.SourcePath)
	}
	stmt += " ORDER BY imported_at DESC, id"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	runs := []Run{}
	if err := s.db.SelectContext(ctx, &runs, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list import runs")
	}
	return runs, nil
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM import_runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Errorf("import run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get import run")
	}
	return &run, nil
}
