package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	signum "github.com/signumhq/signum"
	"github.com/signumhq/signum/internal/adapters/storage"
	exportcmd "github.com/signumhq/signum/internal/commands/export"
	"github.com/signumhq/signum/internal/logging/gologger"
	"github.com/signumhq/signum/internal/site"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("signum: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("signum", flag.ExitOnError)
	dbPath := fs.String("db", "", "Path to the sqlite site database (omit to export the built-in demo site)")
	outPath := fs.String("out", "site.zip", "Path of the zip archive to write")
	dryRun := fs.Bool("dry-run", false, "Compile the site without writing the archive")
	logLevel := fs.String("log-level", "info", "Log level (trace|debug|info|warn|error)")
	logFormat := fs.String("log-format", "console", "Log format (console|json|pretty)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:  *logLevel,
		Format: *logFormat,
	})
	if err != nil {
		return err
	}
	logger := provider.GetLogger("signum.cli")

	ctx := context.Background()

	var store site.Store
	if *dbPath != "" {
		bunStore, err := storage.Open(ctx, *dbPath, storage.WithStoreLogger(logger))
		if err != nil {
			return fmt.Errorf("open site database: %w", err)
		}
		defer bunStore.Close()
		store = bunStore
	} else {
		logger.Info("cli.demo_site", "reason", "no -db flag provided")
		memStore, err := signum.SeedDemoSite(ctx)
		if err != nil {
			return fmt.Errorf("seed demo site: %w", err)
		}
		store = memStore
	}

	module := signum.New(signum.Config{LoggerProvider: provider})
	handler := exportcmd.NewExportSiteHandler(store, module.Generator(), logger)

	cmd := exportcmd.ExportSiteCommand{
		OutputPath: *outPath,
		DryRun:     *dryRun,
		ResultCallback: func(envelope exportcmd.ResultEnvelope) {
			logger.Info("cli.export_done",
				"pages", envelope.Result.PagesBuilt,
				"assets", envelope.Result.AssetsBuilt,
				"diagnostics", len(envelope.Result.Diagnostics),
				"duration", envelope.Result.Duration.String(),
				"archive", envelope.ArchivePath,
				"dry_run", envelope.DryRun,
			)
		},
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("export site: %w", err)
	}

	if !*dryRun {
		fmt.Fprintf(os.Stdout, "site exported to %s\n", *outPath)
	}
	return nil
}
