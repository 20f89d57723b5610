package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"photoapp/internal/config"
)

type migrationStep struct {
	Name string
	// SQL is keyed by driver; %[1]s is replaced with the configured table name.
	SQL map[string]string
}

var steps = []migrationStep{
	{
		Name: "create_table_photos",
		SQL: map[string]string{
			config.DriverPostgres: `CREATE TABLE IF NOT EXISTS %[1]s (
  id         BIGSERIAL   PRIMARY KEY,
  url        TEXT        NOT NULL,
  caption    TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
			config.DriverSQLite: `CREATE TABLE IF NOT EXISTS %[1]s (
  id         INTEGER   PRIMARY KEY AUTOINCREMENT,
  url        TEXT      NOT NULL,
  caption    TEXT      NOT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
		},
	},
}

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrations returns the goose Go migrations for driver, creating table.
// Versions start at 1 and follow the order of steps.
func Migrations(driver, table string) []*goose.Migration {
	out := make([]*goose.Migration, 0, len(steps))
	for i, step := range steps {
		stmt := fmt.Sprintf(step.SQL[driver], table)
		out = append(out, goose.NewGoMigration(int64(i+1), &goose.GoFunc{
			RunTx: func(ctx context.Context, tx *sql.Tx) error {
				_, err := tx.ExecContext(ctx, stmt)
				return err
			},
		}, nil))
	}
	return out
}

// EnsureMigrated applies any pending photo table migrations.
func EnsureMigrated(ctx context.Context, db *sql.DB, c config.DatabaseConfig, logger *slog.Logger) error {
	start := time.Now()
	log := logger.With("component", "database", "db_driver", c.Driver, "db_table", c.Table)

	log.Info("db_migration_check", "status", "starting")

	dialect, err := dialectFor(c.Driver)
	if err != nil {
		log.Error("db_migration_failed", "status", "error", "error_message", err.Error())
		return err
	}

	provider, err := goose.NewProvider(dialect, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(Migrations(c.Driver, c.Table)...),
	)
	if err != nil {
		log.Error("db_migration_failed", "status", "error", "error_message", err.Error())
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r.Error != nil || r.Source == nil {
			continue
		}
		log.Info("db_migration_step",
			"status", "success",
			"migration_step", steps[r.Source.Version-1].Name,
			"step_duration_ms", r.Duration.Milliseconds(),
		)
	}
	if err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}

	if len(results) == 0 {
		log.Info("db_migration_skip", "status", "success", "detail", "schema already up to date",
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	log.Info("db_migration_success", "status", "success", "applied", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
