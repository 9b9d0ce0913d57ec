// Command blogctl administers a bytewave-hub deployment: it applies schema
// migrations, loads seed content and browses the public listing.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Albion-ops/bytewave-hub/internal/config"
	"github.com/Albion-ops/bytewave-hub/internal/database"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/seed"
	"github.com/Albion-ops/bytewave-hub/pkg/logger"
)

const usage = `Usage: blogctl <command> [flags]

Commands:
  migrate up|down|status
                    apply, roll back or show schema migrations
  seed --file PATH  load categories, profiles and posts from a YAML file
  posts             browse the published listing of a running server

Run "blogctl <command> --help" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx, args[1:], stdout)
	case "seed":
		return runSeed(ctx, args[1:], stdout)
	case "posts":
		return runPosts(ctx, args[1:], stdin, stdout)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

// parseFlags parses args into flagSet. It reports done when help was
// requested and printed.
func parseFlags(flagSet *pflag.FlagSet, args []string, stdout io.Writer) (done bool, err error) {
	flagSet.SetOutput(stdout)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func runMigrate(ctx context.Context, args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	path := flagSet.String("path", "", "migrations directory (default: MIGRATIONS_PATH or ./migrations)")
	flagSet.Usage = func() {
		fmt.Fprintln(stdout, "Usage: blogctl migrate up|down|status [--path DIR]")
		flagSet.PrintDefaults()
	}
	if done, err := parseFlags(flagSet, args, stdout); done || err != nil {
		return err
	}

	if flagSet.NArg() != 1 {
		return errors.New("migrate needs exactly one argument: up, down or status")
	}
	var direction database.Direction
	status := flagSet.Arg(0) == "status"
	if !status {
		var err error
		if direction, err = database.ParseDirection(flagSet.Arg(0)); err != nil {
			return err
		}
	}

	cfg, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	migrationsPath := cfg.Database.MigrationsPath
	if *path != "" {
		migrationsPath = *path
	}

	if !status {
		return db.Migrate(migrationsPath, direction)
	}
	version, dirty, err := db.MigrationVersion(migrationsPath)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(stdout, "schema version %d (%s)\n", version, state)
	return nil
}

func runSeed(ctx context.Context, args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	file := flagSet.StringP("file", "f", "", "YAML site file to load (required)")
	batchSize := flagSet.Int("batch-size", seed.DefaultBatchSize, "posts per COPY batch")
	flagSet.Usage = func() {
		fmt.Fprintln(stdout, "Usage: blogctl seed --file site.yaml [--batch-size N]")
		flagSet.PrintDefaults()
	}
	if done, err := parseFlags(flagSet, args, stdout); done || err != nil {
		return err
	}
	if *file == "" {
		return errors.New("--file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	site, err := seed.Decode(f)
	if err != nil {
		return err
	}

	cfg, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	log := logger.NewWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	result, err := seed.NewSeeder(repository.New(db), *batchSize, log).Run(ctx, site)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func openStore(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, nil, err
	}
	// stdout carries command output
	log := logger.NewWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	db, err := database.New(ctx, &cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
