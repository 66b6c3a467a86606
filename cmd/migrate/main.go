package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/storage/sqlstore"
)

const (
	defaultTimeout = 30 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.LookupEnv); err != nil {
		fail("%v", err)
	}
}

// run разбирает флаги и выполняет миграции для PostgreSQL или SQLite.
func run(ctx context.Context, args []string, out io.Writer, lookup func(string) (string, bool)) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		driver    string
		direction string
		steps     int
		dsn       string
	)
	fs.StringVar(&driver, "driver", "", "sql driver: postgres|sqlite (fallback: SHOP_STORAGE_DRIVER, then postgres)")
	fs.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	fs.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN or SQLite path (fallback: SHOP_POSTGRES_DSN / SHOP_SQLITE_PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = strings.ToLower(env("SHOP_STORAGE_DRIVER"))
	}
	if driver == "" || driver == "memory" {
		driver = string(sqlstore.DriverPostgres)
	}

	dsn = strings.TrimSpace(dsn)
	switch sqlstore.Driver(driver) {
	case sqlstore.DriverPostgres:
		if dsn == "" {
			dsn = env("SHOP_POSTGRES_DSN")
		}
		if dsn == "" {
			return errors.New("SHOP_POSTGRES_DSN (or -dsn) is required")
		}
	case sqlstore.DriverSQLite:
		if dsn == "" {
			dsn = env("SHOP_SQLITE_PATH")
		}
		if dsn == "" {
			return errors.New("SHOP_SQLITE_PATH (or -dsn) is required")
		}
	default:
		return fmt.Errorf("unsupported driver: %s (use postgres|sqlite)", driver)
	}

	store, err := sqlstore.Open(ctx, sqlstore.Driver(driver), dsn)
	if err != nil {
		return fmt.Errorf("open %s store: %w", driver, err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return printStatus(ctx, out, store, "migrate up ok")
	case "down":
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return printStatus(ctx, out, store, "migrate down ok")
	case "status":
		return printStatus(ctx, out, store, "migration status")
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}
}

func printStatus(ctx context.Context, out io.Writer, store *sqlstore.Store, prefix string) error {
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s: version=%d applied=%d\n", prefix, version, count)
	return err
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
