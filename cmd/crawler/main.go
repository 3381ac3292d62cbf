package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-crawler/internal/api"
	"github.com/user/catalog-crawler/internal/browser"
	"github.com/user/catalog-crawler/internal/config"
	"github.com/user/catalog-crawler/internal/domain"
	"github.com/user/catalog-crawler/internal/logging"
	"github.com/user/catalog-crawler/internal/monitoring"
	"github.com/user/catalog-crawler/internal/storage"
	"github.com/user/catalog-crawler/internal/usecase"
	"go.uber.org/zap"
)

// CLI flags structure
type CLI struct {
	Scrape ScrapeCmd `cmd:"" help:"Run one scrape and print the result as JSON."`
	Serve  ServeCmd  `cmd:"" help:"Serve the scrape trigger over HTTP."`
}

type ScrapeCmd struct {
	Query  string `help:"Search query (defaults to DEFAULT_QUERY)" short:"q"`
	Output string `help:"Write the result to this file instead of stdout" short:"o" type:"path"`
	Pretty bool   `help:"Indent the JSON output"`
}

type ServeCmd struct{}

// app carries the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
	redis   *redis.Client
	scraper usecase.Scraper
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("crawler"),
		kong.Description("Catalog crawler for marketplace search and product pages."),
		kong.UsageOnError(),
	)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "crawler: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	kctx.FatalIfErrorf(kctx.Run(a))
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("could not build logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: monitoring.NewMetrics(),
	}

	newStore := func(string) storage.CaptureStore { return storage.NewMemoryStore() }
	if cfg.CaptureBackend == config.BackendRedis {
		a.redis = storage.NewRedisClient(cfg.RedisAddr)
		newStore = func(runID string) storage.CaptureStore {
			return storage.NewRedisStore(a.redis, runID, cfg.CaptureTTL)
		}
	}

	newDriver := func() (browser.Driver, error) { return browser.New(cfg, logger) }
	a.scraper = usecase.NewScrapeUseCase(cfg, newDriver, newStore, a.metrics, logger)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (c *ScrapeCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := a.scraper.Scrape(ctx, domain.ScrapeInput{Query: c.Query})
	if err != nil {
		a.logger.Error("scrape failed", zap.Error(err))
		return err
	}

	var out []byte
	if c.Pretty {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	out = append(out, '\n')

	if c.Output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(c.Output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	a.logger.Info("result written",
		zap.String("path", c.Output),
		zap.Int("products", len(result.ProductDetails)),
	)
	return nil
}

// redisPinger adapts the client to the health check.
type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (c *ServeCmd) Run(a *app) error {
	var pinger api.Pinger
	if a.redis != nil {
		pinger = redisPinger{client: a.redis}
	}
	server := api.NewServer(a.cfg, a.scraper, pinger, a.metrics, a.logger)

	// Graceful Shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	a.logger.Info("server started", zap.String("port", a.cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("could not start server: %w", err)
	case <-quit:
	}

	a.logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("server exiting")
	return nil
}
