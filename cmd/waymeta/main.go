package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/davgn/waymeta/internal/control"
	"github.com/davgn/waymeta/internal/core/config"
	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/recovery"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	videoID := flag.String("video", "", "Recover a single video by id")
	batchFile := flag.String("batch", "", "Recover video ids listed in a file, one per line")
	dryRun := flag.Bool("dry-run", false, "Report what would be recovered without writing")
	fromYear := flag.Int("from-year", 0, "Restrict snapshots to captures from this year")
	toYear := flag.Int("to-year", 0, "Restrict snapshots to captures up to this year")
	serve := flag.Bool("serve", false, "Keep running after the batch for health and metrics scraping")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Optional .env for local runs; config values reference env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging, *isDebug)
	slog.SetDefault(log)

	if *videoID == "" && *batchFile == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -video or -batch")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, shutting down...", "signal", sig)
		cancel()
	}()

	app, err := control.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start", "error", err)
		os.Exit(1)
	}

	opts := recovery.Options{
		FromYear: *fromYear,
		ToYear:   *toYear,
	}
	if *dryRun {
		opts.Mode = recovery.ModeDryRun
	}

	exitCode := 0
	switch {
	case *videoID != "":
		result := app.Service().Recover(ctx, *videoID, opts)
		printResult(result)
		if !result.Success {
			exitCode = 1
		}
	case *batchFile != "":
		ids, err := readIDs(*batchFile)
		if err != nil {
			log.Error("Failed to read batch file", "error", err)
			os.Exit(1)
		}
		results := app.Service().RecoverBatch(ctx, ids, opts)
		failed := 0
		for _, r := range results {
			printResult(r)
			if !r.Success {
				failed++
			}
		}
		log.Info("Batch finished", "total", len(results), "failed", failed)
		if failed > 0 {
			exitCode = 1
		}
	}

	if *serve {
		<-ctx.Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := app.Stop(shutdownCtx); err != nil {
		log.Warn("Error during shutdown", "error", err)
	}
	os.Exit(exitCode)
}

func newLogger(cfg config.LoggingConfig, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug || cfg.Level == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	}
	return slog.New(handler)
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ids, nil
}

func printResult(r *domain.RecoveryResult) {
	if r.Success {
		used := ""
		if r.SnapshotUsed != nil {
			used = r.SnapshotUsed.Timestamp
		}
		fmt.Printf("%s: recovered %d field(s) from snapshot %s (skipped %d)\n",
			r.VideoID, len(r.RecoveredFields), used, len(r.SkippedFields))
		return
	}
	fmt.Printf("%s: failed (%s)\n", r.VideoID, r.FailureReason)
}
