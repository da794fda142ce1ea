// Package main provides the CLI entry point for the storefront load generator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emedico/backend/tools/loadgen/internal/config"
	"github.com/emedico/backend/tools/loadgen/internal/metrics"
	"github.com/emedico/backend/tools/loadgen/internal/runner"
)

// Version information (populated at build time)
var version = "dev"

// CLI flags
var (
	configPath     string
	target         string
	duration       time.Duration
	concurrency    int
	qps            float64
	seed           uint64
	validate       bool
	showVersion    bool
	prometheusAddr string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to the YAML configuration file (defaults to every journey)")
	flag.StringVar(&configPath, "c", "", "Path to the YAML configuration file (shorthand)")
	flag.StringVar(&target, "target", "", "Override the storefront base URL")
	flag.DurationVar(&duration, "duration", 0, "Override test duration (e.g., 5m)")
	flag.DurationVar(&duration, "d", 0, "Override test duration (shorthand)")
	flag.IntVar(&concurrency, "concurrency", 0, "Override journeys in flight")
	flag.Float64Var(&qps, "qps", 0, "Override journeys started per second")
	flag.Uint64Var(&seed, "seed", 0, "Seed for generated shopper data")
	flag.BoolVar(&validate, "validate", false, "Validate configuration and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.StringVar(&prometheusAddr, "prometheus", "", "Prometheus metrics endpoint (e.g., :9091)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Load Generator - E-Medico storefront load testing tool

USAGE:
    loadgen [-config <path>] [options]

Simulated shoppers browse the catalog, edit carts, check out, upload
prescriptions and manage accounts. Journeys are weighted in the config file.

OPTIONS:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("loadgen %s\n", version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if validate {
		fmt.Println("Configuration is valid")
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if target != "" {
		cfg.Target.BaseURL = target
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if qps > 0 {
		cfg.QPS = qps
	}
	if seed > 0 {
		cfg.Seed = seed
	}
	if prometheusAddr != "" {
		cfg.Prometheus = prometheusAddr
	}
	return cfg, cfg.Validate()
}

func run(cfg *config.Config) error {
	collector := metrics.NewCollector()

	if cfg.Prometheus != "" {
		exporter, err := metrics.Serve(cfg.Prometheus, collector)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = exporter.Shutdown(ctx)
		}()
		fmt.Printf("Prometheus metrics on http://%s/metrics\n", exporter.Addr())
	}

	r, err := runner.New(cfg, collector, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	metrics.PrintSummary(os.Stdout, collector.Snapshot(), time.Since(start))
	return nil
}
