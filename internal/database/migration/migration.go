package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// The schema is fixed: one comments table plus an index. A comment must have
// text or an attachment, so the table carries a CHECK mirroring the pipeline
// validation.
var sqliteSteps = []migrationStep{
	{
		Name: "create_table_comments",
		SQL: `CREATE TABLE IF NOT EXISTS comments (
  id              INTEGER  PRIMARY KEY AUTOINCREMENT,
  comment_text    TEXT     NOT NULL DEFAULT '',
  attachment_path TEXT,
  created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  CHECK (comment_text <> '' OR attachment_path IS NOT NULL)
);`,
	},
	{
		Name: "create_index_comments_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments (created_at);`,
	},
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_comments",
		SQL: `CREATE TABLE IF NOT EXISTS comments (
  id              BIGINT      GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  comment_text    TEXT        NOT NULL DEFAULT '',
  attachment_path TEXT,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (comment_text <> '' OR attachment_path IS NOT NULL)
);`,
	},
	{
		Name: "create_index_comments_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments (created_at);`,
	},
}

// EnsureMigrated checks whether the 'comments' table exists and runs the
// schema steps for the configured driver if it doesn't. Safe to call on every
// startup.
func EnsureMigrated(ctx context.Context, db *sql.DB, driver string, loc *time.Location, target string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_target": target,
	})

	exists, err := commentsTableExists(ctx, db, driver)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_target":     target,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_target":   target,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	steps := sqliteSteps
	if driver == "postgres" {
		steps = postgresSteps
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_target": target,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_target":        target,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_target":        target,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_target":   target,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func commentsTableExists(ctx context.Context, db *sql.DB, driver string) (bool, error) {
	var exists bool
	query := `SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'comments'`
	if driver == "postgres" {
		query = `SELECT to_regclass('public.comments') IS NOT NULL`
	}
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	return exists, err
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
