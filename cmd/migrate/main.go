package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"talentmatch/internal/config"
	"talentmatch/internal/logging"
)

const usage = "Usage: migrate [-dir db/migrations] [up|down|steps N|force V|version]"

func main() {
	dir := flag.String("dir", "db/migrations", "directory holding migration files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log)

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN())
	if err != nil {
		fatal(logger, "failed to create migrate instance", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal(logger, "migration up failed", err)
		}
		logger.Info("migrations applied")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal(logger, "migration down failed", err)
		}
		logger.Info("migrations reverted")

	case "steps":
		n := intArg(logger, args, "steps")
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal(logger, "migration steps failed", err)
		}
		logger.Info("applied migration steps", "steps", n)

	case "force":
		v := intArg(logger, args, "force")
		if err := m.Force(v); err != nil {
			fatal(logger, "force version failed", err)
		}
		logger.Info("forced migration version", "version", v)

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fatal(logger, "failed to get version", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", args[0])
		fmt.Println(usage)
		os.Exit(1)
	}
}

func intArg(logger *slog.Logger, args []string, cmd string) int {
	if len(args) < 2 {
		fatal(logger, cmd+" requires a number argument", nil)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fatal(logger, "invalid "+cmd+" argument", err)
	}
	return n
}

func fatal(logger *slog.Logger, msg string, err error) {
	if err != nil {
		logger.Error(msg, "error", err)
	} else {
		logger.Error(msg)
	}
	os.Exit(1)
}
