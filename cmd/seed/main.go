package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const EnvDatabaseDSN = "SERVICE_DATABASE_DSN"

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string")
		all     = flag.Bool("all", false, "Run all seeders")
		notes   = flag.Bool("notes", false, "Seed sample notes")
		quizzes = flag.Bool("quizzes", false, "Seed sample quizzes (and the notes they cover)")
		file    = flag.String("file", "", "External note seed file (overrides embedded)")
		list    = flag.Bool("list", false, "List available seeders")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range listSeeders() {
			fmt.Printf("  - %s: %s\n", s.Name(), s.Description())
		}
		return
	}

	var names []string
	if *notes {
		names = append(names, "notes")
	}
	if *quizzes {
		names = append(names, "quizzes")
	}
	if !*all && len(names) == 0 {
		fmt.Println("usage: seed -dsn <connection-string> [-all|-notes|-quizzes] [-file <path>] [-list]")
		flag.PrintDefaults()
		return
	}

	if *file != "" {
		if seeder, ok := getSeeder("notes"); ok {
			seeder.(*NoteSeeder).SetFile(*file)
		}
	}

	if *dsn == "" {
		*dsn = os.Getenv(EnvDatabaseDSN)
	}
	if *dsn == "" {
		log.Fatalf("database connection string required: use -dsn flag or %s env var", EnvDatabaseDSN)
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()

	var reports []Report
	if *all {
		reports, err = runAllSeeders(ctx, db)
	} else {
		reports, err = runSeeders(ctx, db, names...)
	}
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	for _, r := range reports {
		fmt.Printf("seeded %s: %d records\n", r.Name, r.Rows)
	}
}
