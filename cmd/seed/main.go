package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/app"
	"github.com/vladislavdragonenkov/shop/internal/catalog"
)

const defaultTimeout = 30 * time.Second

//go:embed catalog.yaml
var defaultCatalog []byte

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.LookupEnv); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run загружает каталог из -file (или встроенный) в хранилище из SHOP_*.
func run(ctx context.Context, args []string, out io.Writer, lookup app.EnvLookup) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var path string
	fs.StringVar(&path, "file", "", "YAML catalog to load (default: built-in demo catalog)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		data = raw
	}
	file, err := catalog.Parse(data)
	if err != nil {
		return err
	}

	cfg, warnings := app.ConfigFromEnv(lookup)
	for _, w := range warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", w)
	}
	if cfg.StorageDriver == app.StorageDriverMemory {
		return fmt.Errorf("storage driver %q is not persistent, set SHOP_STORAGE_DRIVER to %s or %s",
			app.StorageDriverMemory, app.StorageDriverSQLite, app.StorageDriverPostgres)
	}

	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	entry := log.NewEntry(logger).WithField("component", "seed")

	store, err := app.OpenStore(ctx, cfg, entry.WithField("layer", "storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	res, err := catalog.Load(ctx, store, file, entry)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	_, err = fmt.Fprintf(out, "seeded vendors=%d products=%d\n", res.Vendors, res.Products)
	return err
}
