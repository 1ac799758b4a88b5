package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/migrate"
	"github.com/pitchdata/pitchdata-api/migrations"
)

// runMigrationCommand executes one operator migration command and exits.
// "up" is also run automatically at server startup; "down" reverses the
// single most recent step and exists for operator use only.
func (app *application) runMigrationCommand(command string) error {
	ctx := context.Background()

	switch command {
	case "up":
		return app.migrateUp(ctx)
	case "down":
		steps, runner, err := app.migrationRunner()
		if err != nil {
			return err
		}
		return runner.Down(ctx, steps)
	case "status":
		steps, runner, err := app.migrationRunner()
		if err != nil {
			return err
		}
		statuses, err := runner.Status(ctx, steps)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = fmt.Sprintf("applied %s", s.AppliedAt.Format(time.RFC3339))
			}
			fmt.Printf("%4d  %-40s  %s\n", s.Step.Ordinal, s.Step.Name, state)
		}
		return nil
	case "version":
		_, runner, err := app.migrationRunner()
		if err != nil {
			return err
		}
		version, err := runner.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(version)
		return nil
	default:
		return fmt.Errorf("unknown migration command %q (want up, down, status or version)", command)
	}
}

// migrateUp brings the database to the schema version this binary ships
// with. It records the run outcome in the migration metrics.
func (app *application) migrateUp(ctx context.Context) error {
	steps, runner, err := app.migrationRunner()
	if err != nil {
		return err
	}

	start := time.Now()
	applied, err := runner.Run(ctx, steps)
	if err != nil {
		app.metrics.ObserveMigrationRun("failure", time.Since(start))
		return fmt.Errorf("applying migrations: %w", err)
	}
	app.metrics.ObserveMigrationRun("success", time.Since(start))

	app.logger.Info("migrations complete",
		slog.Int("applied", applied),
		slog.Int("total", len(steps)))
	return nil
}

func (app *application) migrationRunner() ([]migrate.Step, *migrate.Runner, error) {
	steps, err := migrate.LoadSteps(migrations.Files())
	if err != nil {
		return nil, nil, fmt.Errorf("loading migration files: %w", err)
	}
	runner := migrate.NewRunner(app.db, app.logger, app.config.Migration.LockTimeout)
	return steps, runner, nil
}
