package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tickerfeed/internal/config"
	"tickerfeed/internal/httpapi"
	"tickerfeed/internal/store"
	"tickerfeed/internal/util"
)

func main() {
	generate := flag.Int("generate", 0, "generate N synthetic posts before serving")
	seed := flag.Uint64("seed", 1, "random seed for -generate")
	fixtures := flag.String("fixtures", "", "load Parquet fixtures from this directory (default storage.fixture_dir)")
	flag.Parse()

	// Load config.
	cfgPath := "config/tickerfeed.yaml"
	if p := os.Getenv("TICKERFEED_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *fixtures == "" {
		*fixtures = cfg.Storage.FixtureDir
	}

	// Setup logging.
	logFile, err := util.OpenDatedLog("", "feed-devserver")
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stdout, logFile))

	// Open store.
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *generate > 0 {
		fx := store.GenerateFixtures(*generate, *seed, time.Now())
		if *fixtures != "" {
			if err := store.WriteFixtures(*fixtures, fx); err != nil {
				log.Fatalf("writing fixtures: %v", err)
			}
			logger.Info("fixtures written", "dir", *fixtures, "posts", len(fx.Posts))
		}
		if err := st.LoadFixtures(ctx, fx); err != nil {
			log.Fatalf("loading generated posts: %v", err)
		}
	} else if *fixtures != "" {
		fx, err := store.ReadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("reading fixtures: %v", err)
		}
		if err := st.LoadFixtures(ctx, fx); err != nil {
			log.Fatalf("loading fixtures: %v", err)
		}
		logger.Info("fixtures loaded", "dir", *fixtures, "posts", len(fx.Posts), "tickers", len(fx.Tickers))
	}

	n, err := st.CountPosts(ctx)
	if err != nil {
		log.Fatalf("counting posts: %v", err)
	}

	// Start HTTP server.
	srv := httpapi.NewFilterServer(st, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dev filter server listening", "addr", httpServer.Addr, "posts", n, "db", cfg.Storage.SQLitePath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down dev filter server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
