// Package main is the one-shot batch runner: collect the stored URL
// list (or one given on the command line), optionally clean the fresh
// raw artifact, and print a report. Meant for cron jobs and manual
// corpus builds without a running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	events "github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/processing"
	"github.com/akshara-labs/akshara/internal/scraping"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
	"github.com/akshara-labs/akshara/pkg/logging"
	pipecfg "github.com/akshara-labs/akshara/pkg/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML pipeline config")
		urlFile    = flag.String("urls", "", "URL list file (default: the stored list under the data dir)")
		clean      = flag.Bool("clean", true, "clean the raw artifact after collecting")
		seed       = flag.Bool("seed", false, "save the built-in sample URLs as the stored list and exit")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := logging.SetupLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}

	metrics := storage.NewSimpleMetricsCollector()
	store, err := storage.NewFilesystemStore(cfg.Storage, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize artifact store")
	}

	ctx := context.Background()

	if *seed {
		if err := store.SaveURLList(ctx, corpus.FormatURLList(corpus.SampleURLs)); err != nil {
			log.Fatal().Err(err).Msg("Failed to save sample URL list")
		}
		fmt.Printf("Saved %d sample URLs\n", len(corpus.SampleURLs))
		return
	}

	urls, err := loadURLs(ctx, store, *urlFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load URL list")
	}
	if len(urls) == 0 {
		fmt.Println("URL list is empty, nothing to collect")
		return
	}

	bus := events.NewEventBus(256, 2)
	defer bus.Close()

	fetcher := scraping.NewFetcher(cfg.Scraping)
	collector := scraping.NewCollector(fetcher, store, bus)
	if cfg.Storage.EnableGitArchive {
		archive, err := storage.NewGitArchive(cfg.Storage.GitArchiveDir, metrics)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize git archive")
		}
		collector.SetArchive(archive)
	}
	cleaner := processing.NewCorpusCleaner(store)
	service := scraping.NewService(collector, cleaner, store, bus)

	run, err := service.Collect(ctx, urls, cfg.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("Collection failed")
	}

	fmt.Println("=== Collection ===")
	fmt.Printf("Raw artifact:   %s\n", run.RawArtifact)
	fmt.Printf("URLs:           %d total, %d successful, %d failed\n",
		run.Metadata.TotalURLs, run.Metadata.SuccessfulURLs, run.Metadata.FailedURLs)
	fmt.Printf("Text items:     %d (%d paragraphs, %d headings)\n",
		run.Metadata.TotalTextItems, run.Metadata.TotalParagraphs, run.Metadata.TotalHeadings)
	fmt.Printf("Duration:       %s\n", run.CompletedAt.Sub(run.StartedAt).Round(10*time.Millisecond))

	if !*clean {
		return
	}

	cleaning, err := service.Clean(ctx, run.RawArtifact, cfg.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("Cleaning failed")
	}

	fmt.Println("=== Cleaning ===")
	fmt.Printf("Clean artifact: %s\n", cleaning.CleanArtifact)
	fmt.Printf("Lines:          %d original -> %d cleaned -> %d final (%d duplicates removed)\n",
		cleaning.Stats.OriginalLines, cleaning.Stats.CleanedLines,
		cleaning.Stats.FinalLines, cleaning.Stats.DuplicatesRemoved)
	fmt.Printf("Reduction:      %.1f%%\n", cleaning.Stats.ReductionPercentage)
}

func loadConfig(path string) (*pipecfg.PipelineConfig, error) {
	if path != "" {
		return pipecfg.LoadConfig(path)
	}
	if os.Getenv("AKSHARA_ENV") == "production" {
		return pipecfg.ProductionPipelineConfig(), nil
	}
	return pipecfg.DefaultPipelineConfig(), nil
}

func loadURLs(ctx context.Context, store *storage.FilesystemStore, urlFile string) ([]string, error) {
	if urlFile != "" {
		data, err := os.ReadFile(urlFile)
		if err != nil {
			return nil, err
		}
		return corpus.ParseURLList(string(data)), nil
	}
	content, err := store.LoadURLList(ctx)
	if err != nil {
		return nil, err
	}
	return corpus.ParseURLList(content), nil
}
