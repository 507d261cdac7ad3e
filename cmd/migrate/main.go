package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hsdfat8/gridops/internal/adapters/postgres"
	"github.com/hsdfat8/gridops/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	var (
		databaseURL = flag.String("database-url", "", "PostgreSQL connection string (overrides the loaded configuration)")
		configPath  = flag.String("config", "", "Path to a config file")
		verify      = flag.Bool("verify", false, "Verify schema after migration")
		status      = flag.Bool("status", false, "Show migration status")
	)

	flag.Parse()

	dsn := *databaseURL
	if dsn == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		pg := cfg.Database.Postgres
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode,
		)
	}

	fmt.Println("Connecting to database...")
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ping database: %v\n", err)
		os.Exit(1)
	}

	migrator := postgres.NewMigrator(db)

	if *status {
		if err := showMigrationStatus(ctx, migrator); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get migration status: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := migrator.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if *verify {
		if err := migrator.VerifySchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Schema verification failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("✓ Migrations applied")
}

func showMigrationStatus(ctx context.Context, migrator *postgres.Migrator) error {
	migrations, err := migrator.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}

	if len(migrations) == 0 {
		fmt.Println("No migrations have been applied yet.")
		return nil
	}

	for _, m := range migrations {
		fmt.Printf("✓ %s\n", m.MigrationName)
		fmt.Printf("  Description: %s\n", m.Description)
		fmt.Printf("  Applied at:  %s\n", m.AppliedAt.Format(time.RFC3339))
	}
	return nil
}
