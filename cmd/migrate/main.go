package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"airline-analytics/internal/config"
	"airline-analytics/migrations"
	"airline-analytics/pkg/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	if *direction != "up" && *direction != "down" {
		fmt.Fprintf(os.Stderr, "Unknown direction %q, expected up or down\n", *direction)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database successfully\n", cfg.Database.Driver)

	var names []string
	if *direction == "up" {
		names, err = database.ApplyMigrations(ctx, db, migrations.FS, ".")
	} else {
		names, err = database.RevertMigrations(ctx, db, migrations.FS, ".")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	if len(names) == 0 {
		fmt.Println("Nothing to migrate")
		return
	}
	for _, name := range names {
		fmt.Printf("Migrated %s: %s\n", *direction, name)
	}
	fmt.Println("Migration completed successfully")
}
