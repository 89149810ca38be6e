package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoices-tracker/internal/async"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/core"
	"github.com/joseph-ayodele/invoices-tracker/internal/export"
	"github.com/joseph-ayodele/invoices-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
	"github.com/joseph-ayodele/invoices-tracker/internal/rules"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem     = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir       = flag.String("dir", "", "directory to process invoices from (required)")
		out       = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		rulesPath = flag.String("rules", "", "rules file path (optional, defaults to RULES_PATH)")
		watch     = flag.Bool("watch", false, "keep watching the directory after the initial pass")
		workers   = flag.Int("workers", 0, "worker count for watch mode (optional)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "invoices.xlsx")
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *rulesPath != "" {
		cfg.Rules.Path = *rulesPath
	}
	if *workers > 0 {
		cfg.Ingest.Workers = *workers
	}

	dsn := cfg.Database.DSN
	if *inmem {
		dsn = ":memory:"
	}
	repo, err := repository.OpenSQLite(ctx, dsn, logger)
	if err != nil {
		logger.Error("failed to open invoice store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close invoice store", "error", err)
		}
	}()

	r, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		logger.Error("failed to load rules", "path", cfg.Rules.Path, "error", err)
		os.Exit(1)
	}

	proc := core.NewProcessor(logger, repo, r)
	ingestor := ingest.NewFSIngestor(proc, logger)

	logger.Info("starting ingestion", "dir", *dir)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	for _, res := range results {
		if res.Err != "" {
			logger.Warn("file failed", "path", res.SourcePath, "error", res.Err)
		}
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)

	if *watch {
		runWatch(ctx, cfg, proc, logger, *dir)
	}

	exporter := export.NewService(repo, logger)
	data, err := exporter.ExportInvoicesXLSX(ctx, repository.ListFilter{})
	if err != nil {
		logger.Error("failed to export workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("failed to write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("workbook written", "path", *out)
}

// runWatch processes filesystem events through a worker queue until
// interrupted. The initial scan already ran, so only new changes flow here.
func runWatch(ctx context.Context, cfg *common.Config, proc *core.Processor, logger *slog.Logger, dir string) {
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{dir},
		Debounce: cfg.Ingest.WatchDebounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return
	}
	logger.Info("watching for changes", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			_ = queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now().UTC()})
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
