package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"viewportd/internal/config"
	"viewportd/internal/daemon"
	"viewportd/internal/httpapi"
	"viewportd/internal/lazy"
	"viewportd/internal/monitor"
	"viewportd/internal/pool"
	"viewportd/internal/registry"
	"viewportd/internal/scheduler"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("VIEWPORTD_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultSeriesDir := os.Getenv("VIEWPORTD_SERIES_DIR")
	cfgPath := flag.String("config", os.Getenv("VIEWPORTD_CONFIG"), "Path to a yaml/json/toml config file")
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	seriesDir := flag.String("series-dir", defaultSeriesDir, "Directory to scan for series manifests (*.json, *.yaml)")
	logLevel := flag.String("log-level", os.Getenv("VIEWPORTD_LOG_LEVEL"), "Log level: debug|info|warn|error")
	fetchBase := flag.String("fetch-base-url", "", "Base URL of the image store; empty selects the simulated fetcher")
	flag.Parse()

	var cfg config.Config
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			l := zerolog.New(os.Stderr)
			l.Fatal().Err(err).Str("path", *cfgPath).Msg("load config")
		}
	}
	// Flags win over the config file when both are given.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *seriesDir != "" {
		cfg.SeriesDir = *seriesDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *fetchBase != "" {
		cfg.FetchBaseURL = *fetchBase
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)

	series, err := registry.LoadDir(cfg.SeriesDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.SeriesDir).Msg("series registry unavailable, starting empty")
	}

	memory := monitor.NewMemoryMonitor(cfg.MemoryThreshold, nil)
	network := monitor.NewNetworkMonitor(0)

	p := pool.New(pool.Config{
		MinSize:     cfg.PoolMinSize,
		MaxSize:     cfg.PoolMaxSize,
		MaxIdleTime: time.Duration(cfg.PoolMaxIdleSeconds) * time.Second,
		GCInterval:  time.Duration(cfg.PoolGCSeconds) * time.Second,
		Factory:     pool.StubFactory{},
		Memory:      memory,
		Logger:      log.With().Str("component", "pool").Logger(),
	})

	l := lazy.New(lazy.Config{
		MaxActive:         cfg.MaxActiveViewports,
		InactivityTimeout: time.Duration(cfg.InactivitySeconds) * time.Second,
		AdjacencyPreload:  cfg.AdjacencyPreload,
		HistoryPath:       cfg.AccessHistoryPath,
		Materializer:      lazy.StubMaterializer{},
		Memory:            memory,
		Logger:            log.With().Str("component", "lazy").Logger(),
	})

	var fetcher scheduler.Fetcher
	if cfg.FetchBaseURL != "" {
		fetcher = scheduler.NewHTTPFetcher(cfg.FetchBaseURL, nil)
	}
	sched := scheduler.New(scheduler.Config{
		MaxConcurrentChunks: cfg.MaxConcurrentChunks,
		BaseChunkSize:       cfg.BaseChunkSize,
		ChunkTimeout:        time.Duration(cfg.ChunkTimeoutSeconds) * time.Second,
		Fetcher:             fetcher,
		Network:             network,
		Memory:              memory,
		Logger:              log.With().Str("component", "scheduler").Logger(),
	})

	d := daemon.New(daemon.Options{
		Registry: series,
		Pool:     p,
		Lazy:     l,
		Sched:    sched,
		Network:  network,
		Memory:   memory,
		Logger:   log,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	d.Start(baseCtx)

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetBaseContext(baseCtx)
	mux := httpapi.NewMux(d)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("series_dir", cfg.SeriesDir).Int("series", len(series)).Msg("viewportd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := d.Close(); err != nil {
		log.Error().Err(err).Msg("component shutdown error")
	}
}
