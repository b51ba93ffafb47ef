// Package main seeds a study-lab database with sample notes and quizzes.
// Seeders name the seeders whose rows they reference, and a run executes the
// requested seeders and their requirements in dependency order inside one
// transaction.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
)

// Seeder populates one kind of sample data.
type Seeder interface {
	Name() string
	Description() string

	// Requires names the seeders whose rows this seeder references.
	Requires() []string

	// Seed writes rows within tx and reports how many it wrote.
	Seed(ctx context.Context, tx *sql.Tx) (int, error)
}

// Report is the outcome of one seeder in a run.
type Report struct {
	Name string
	Rows int
}

var seeders = map[string]Seeder{}

// registerSeeder adds a seeder to the registry. Seeders self-register via init().
func registerSeeder(s Seeder) {
	if _, dup := seeders[s.Name()]; dup {
		panic("seed: duplicate seeder " + s.Name())
	}
	seeders[s.Name()] = s
}

func getSeeder(name string) (Seeder, bool) {
	s, ok := seeders[name]
	return s, ok
}

// listSeeders returns all registered seeders ordered by name.
func listSeeders() []Seeder {
	result := make([]Seeder, 0, len(seeders))
	for _, name := range slices.Sorted(maps.Keys(seeders)) {
		result = append(result, seeders[name])
	}
	return result
}

// plan expands names with their requirements and orders the result so every
// seeder runs after the seeders it requires. Each seeder appears once.
func plan(names ...string) ([]Seeder, error) {
	const (
		visiting = iota + 1
		done
	)

	state := make(map[string]int)
	var order []Seeder

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("seeder dependency cycle at %s", name)
		}

		s, ok := seeders[name]
		if !ok {
			return fmt.Errorf("seeder not found: %s", name)
		}

		state[name] = visiting
		for _, req := range s.Requires() {
			if err := visit(req); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, s)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// runSeeders executes the named seeders and their requirements within a single
// transaction. If any seeder fails, the entire transaction is rolled back.
func runSeeders(ctx context.Context, db *sql.DB, names ...string) ([]Report, error) {
	order, err := plan(names...)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	reports := make([]Report, 0, len(order))
	for _, s := range order {
		rows, err := s.Seed(ctx, tx)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		reports = append(reports, Report{Name: s.Name(), Rows: rows})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return reports, nil
}

// runAllSeeders executes every registered seeder.
func runAllSeeders(ctx context.Context, db *sql.DB) ([]Report, error) {
	return runSeeders(ctx, db, slices.Sorted(maps.Keys(seeders))...)
}
