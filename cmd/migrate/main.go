// Command migrate applies the catalog schema migrations in db/migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"facturio/internal/config"
)

const usage = "usage: migrate [-source DIR] up | down | steps N | version"

func main() {
	source := flag.String("source", "db/migrations", "migrations directory")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New("file://"+*source, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("opening migrations: %v", err)
	}
	defer m.Close()

	if err := run(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		return noChangeOK(m.Up(), "database is up to date")
	case "down":
		return noChangeOK(m.Down(), "nothing to revert")
	case "steps":
		if len(args) < 2 {
			return errors.New("steps requires a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return noChangeOK(m.Steps(n), "no pending migrations")
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		fmt.Printf("version %d (dirty=%v)\n", v, dirty)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func noChangeOK(err error, msg string) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println(msg)
		return nil
	}
	if err == nil {
		log.Println("done")
	}
	return err
}
