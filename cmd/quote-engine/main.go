// Package main is the entry point for the quote engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/quote-engine/business/arbitrage"
	arbitrageApp "github.com/fd1az/quote-engine/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/quote-engine/business/arbitrage/di"
	"github.com/fd1az/quote-engine/business/arbitrage/domain"
	"github.com/fd1az/quote-engine/business/arbitrage/infra/tokens"
	"github.com/fd1az/quote-engine/business/dex"
	"github.com/fd1az/quote-engine/business/fees"
	"github.com/fd1az/quote-engine/business/marketdata"
	marketdataDI "github.com/fd1az/quote-engine/business/marketdata/di"
	"github.com/fd1az/quote-engine/business/pricing"
	"github.com/fd1az/quote-engine/internal/apm"
	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/health"
	"github.com/fd1az/quote-engine/internal/logger"
	"github.com/fd1az/quote-engine/internal/metrics"
	"github.com/fd1az/quote-engine/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	configPath string
	tokensPath string
	once       bool
	venues     string
	direction  string
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.tokensPath, "tokens", "", "Path to token descriptor file (overrides scan.tokens_file)")
	flag.BoolVar(&opts.once, "once", false, "Run a single scan and exit")
	flag.StringVar(&opts.venues, "venues", "", "Comma-separated DEX venues to evaluate (default: all enabled)")
	flag.StringVar(&opts.direction, "direction", "", "Evaluate one direction only: cex_to_dex or dex_to_cex")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("quote-engine %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.tokensPath != "" {
		cfg.Scan.TokensFile = opts.tokensPath
	}
	if opts.once {
		cfg.Scan.Once = true
	}

	filter, err := parseFilter(opts.venues, opts.direction)
	if err != nil {
		return err
	}

	// Logs go to stderr, or to a rotating file so they don't mix with console results.
	var out io.Writer = os.Stderr
	if cfg.App.LogFile != "" {
		fw := logger.NewFileWriter(cfg.App.LogFile, cfg.App.LogMaxSizeMB, cfg.App.LogMaxAgeDays)
		defer fw.Close()
		out = fw
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, traceID)
	log.Info(ctx, "starting quote engine",
		"version", version,
		"environment", cfg.App.Environment,
	)

	traceProvider, err := apm.NewTraceProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer traceProvider.Stop()

	if cfg.Telemetry.Enabled {
		mp, err := metrics.NewMetricProvider(ctx,
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer mp.Shutdown(context.Background())

		go metrics.ServePrometheusMetrics(ctx, log, metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort)))
	}

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Dependency order: marketdata reads pricing, arbitrage reads everything.
	arb := &arbitrage.Module{}
	modules := []monolith.Module{
		&pricing.Module{},
		&dex.Module{},
		&marketdata.Module{},
		&fees.Module{},
		arb,
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	defer arb.Shutdown(context.Background(), mono)

	list, err := tokens.LoadFile(cfg.Scan.TokensFile, cfg.Chains)
	if err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}
	log.Info(ctx, "tokens loaded", "count", len(list), "file", cfg.Scan.TokensFile)

	oracle := marketdataDI.GetOracle(mono.Services())
	defer oracle.Close()

	healthServer := health.NewServer(cfg.Health.Port, version, mono.Overrides(), log)
	healthServer.RegisterCheck("tokens", func(context.Context) (bool, string) {
		return len(list) > 0, strconv.Itoa(len(list)) + " tokens"
	})
	healthServer.RegisterCheck("fx_cache", func(ctx context.Context) (bool, string) {
		if oracle.Cached(ctx) {
			return true, "warm"
		}
		return true, "cold"
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Health.Port)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		healthServer.Stop(stopCtx)
	}()

	scanner := arbitrageDI.GetScanner(mono.Services())
	reporters := arbitrageDI.GetReporters(mono.Services())

	for {
		arbitrageApp.Dispatch(ctx, scanner.Run(ctx, list, filter), reporters...)

		if cfg.Scan.Once || ctx.Err() != nil {
			break
		}
		if err := mono.Delay().Await(ctx, delay.ScopeBatch, ""); err != nil {
			break
		}
	}

	log.Info(context.Background(), "shutting down")
	return nil
}

func parseFilter(venues, direction string) (arbitrageApp.Filter, error) {
	var f arbitrageApp.Filter
	for _, v := range strings.Split(venues, ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.DEXVenues = append(f.DEXVenues, v)
		}
	}
	if direction != "" {
		d, ok := domain.ParseDirection(direction)
		if !ok {
			return f, fmt.Errorf("unknown direction %q", direction)
		}
		f.Directions = []domain.Direction{d}
	}
	return f, nil
}

func traceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
