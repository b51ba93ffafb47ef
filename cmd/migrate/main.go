package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const EnvDatabaseDSN = "SERVICE_DATABASE_DSN"

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (defaults to config.toml)")
		up      = flag.Bool("up", false, "Apply all pending migrations")
		down    = flag.Bool("down", false, "Roll back all migrations")
		steps   = flag.Int("steps", 0, "Apply n migrations; negative values roll back")
		version = flag.Bool("version", false, "Print the current schema version")
	)
	flag.Parse()

	if !*up && !*down && *steps == 0 && !*version {
		fmt.Println("usage: migrate [-dsn <connection-string>] -up|-down|-steps <n>|-version")
		flag.PrintDefaults()
		return
	}

	conn, err := resolveDSN(*dsn)
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("pgx", conn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	m, err := newMigrator(db)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	switch {
	case *version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if err != nil {
			log.Fatalf("failed to read version: %v", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)

	case *up:
		report(m.Up(), "migrations applied")

	case *down:
		report(m.Down(), "migrations rolled back")

	default:
		report(m.Steps(*steps), fmt.Sprintf("%d migration steps applied", *steps))
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return "", fmt.Errorf("finalize config: %w", err)
	}
	return cfg.Database.Dsn(), nil
}

func report(err error, success string) {
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("schema already up to date")
		return
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	fmt.Println(success)
}
