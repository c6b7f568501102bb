package history

import (
	"database/sql"

	"github.com/jingkaihe/skillport/pkg/db"
	"github.com/pkg/errors"
)

// Migrations returns the ledger schema migrations.
func Migrations() []db.Migration {
	return []db.Migration{
		{
			Version:     20261018090000,
			Description: "Create import_runs table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS import_runs (
						id TEXT PRIMARY KEY,
						skill_name TEXT NOT NULL,
						source_path TEXT NOT NULL,
						source_format TEXT NOT NULL,
						output_dir TEXT NOT NULL,
						score INTEGER NOT NULL,
						grade TEXT NOT NULL,
						sync_status TEXT NOT NULL,
						combined_hash TEXT NOT NULL,
						tool_version TEXT NOT NULL,
						imported_at DATETIME NOT NULL
					)
				`)
				return errors.Wrap(err, "failed to create import_runs table")
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP TABLE IF EXISTS import_runs")
				return errors.Wrap(err, "failed to drop import_runs table")
			},
		},
		{
			Version:     20261018090001,
			Description: "Index import_runs by skill and time",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_import_runs_skill ON import_runs(skill_name, imported_at DESC)`)
				return errors.Wrap(err, "failed to create import_runs index")
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP INDEX IF EXISTS idx_import_runs_skill")
				return errors.Wrap(err, "failed to drop import_runs index")
			},
		},
	}
}
