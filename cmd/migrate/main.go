// Command migrate manages the storefront's PostgreSQL schema.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/emedico/backend/internal/infrastructure/logger"
	"github.com/emedico/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultCreateDir = "internal/infrastructure/migration/sql"

const usage = `E-Medico schema migrations

Usage:
  migrate [-path dir] [-log-level level] <command> [args]

Commands:
  up                    apply pending migrations
  down                  roll every migration back
  step <n>              apply n migrations, negative n rolls back
  goto <version>        migrate to version
  version               print the applied version
  force <version>       mark version as applied after a failed run
  create <name> [desc]  write a new up/down pair
  list                  list known migrations

The database is read from config.toml and EMEDICO_DATABASE_* variables.
Without -path the migrations compiled into the binary are used.
`

var errUsage = errors.New("bad usage")

// dbCommand runs against an open migrator; args excludes the command name
type dbCommand func(m *migration.Migrator, args []string, log *zap.Logger) error

var dbCommands = map[string]dbCommand{
	"up":   func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	"down": func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	"step": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args)
		if err != nil || v < 0 {
			return errors.Join(errUsage, err)
		}
		return m.GoTo(uint(v))
	},
	"force": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	path := flag.String("path", "", "migrations directory (default: embedded set)")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout", TimeFormat: "15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args[0], args[1:], *path, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.Fatal("migrate "+args[0]+" failed", zap.Error(err))
	}
}

func run(command string, args []string, path string, log *zap.Logger) error {
	switch command {
	case "create":
		return create(args, path, log)
	case "list":
		return list(path)
	}

	cmd, ok := dbCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("driver %q uses auto-migration; migrations target postgres", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if path == "" {
		m, err = migration.New(db, log)
	} else {
		m, err = migration.NewFromPath(db, path, log)
	}
	if err != nil {
		return err
	}
	defer m.Close()

	return cmd(m, args, log)
}

func create(args []string, dir string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create needs a name", errUsage)
	}
	if dir == "" {
		dir = defaultCreateDir
	}
	desc := ""
	if len(args) > 1 {
		desc = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], desc)
	if err != nil {
		return err
	}
	log.Info("Migration created", zap.String("version", mf.Version), zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
	return nil
}

func list(dir string) error {
	var (
		names []string
		err   error
	)
	if dir == "" {
		names, err = migration.ListMigrations(migration.Embedded(), migration.EmbeddedDir)
	} else {
		names, err = migration.ListMigrations(os.DirFS(dir), ".")
	}
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: missing number", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}
