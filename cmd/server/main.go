// Package main implements the entry point for the pitchdata API server,
// which stores football reference data behind schema-validated CRUD
// endpoints and manages its own database schema version.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version) and exit")
	flag.Parse()

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if *migrateCmd != "" {
		if err := app.runMigrationCommand(*migrateCmd); err != nil {
			app.logger.Error("migration command failed",
				slog.String("command", *migrateCmd),
				slog.String("error", err.Error()))
			app.cleanup()
			os.Exit(1)
		}
		return
	}

	if err := app.run(); err != nil {
		app.logger.Error("server exited with error", slog.String("error", err.Error()))
		app.cleanup()
		os.Exit(1)
	}
}

// initializeApp loads configuration, sets up logging and the database pool,
// and wires the application components together.
func initializeApp() (*application, error) {
	app, err := newApplication()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return app, nil
}
