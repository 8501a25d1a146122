// Package main applies schema migrations for the battle database.
//
// Usage:
//
//	migrate [-config configs/dev.yaml] [-steps N] up|down
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/fennwald/emberquest/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	steps := flag.Int("steps", 0, "number of migration steps (0 = all)")
	flag.Parse()

	direction := flag.Arg(0)
	if direction != "up" && direction != "down" {
		fmt.Fprintln(os.Stderr, "usage: migrate [-config file] [-steps N] up|down")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	began := time.Now()
	switch {
	case direction == "up" && *steps > 0:
		err = m.Steps(*steps)
	case direction == "up":
		err = m.Up()
	case *steps > 0:
		err = m.Steps(-*steps)
	default:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("no changes (version=%d dirty=%v) [%s]\n", version, dirty, time.Since(began))
		return
	}
	fmt.Printf("migrated %s to version=%d dirty=%v [%s]\n", direction, version, dirty, time.Since(began))
}
