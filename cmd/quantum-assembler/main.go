// Command quantum-assembler runs the assembler simulation with autosave and
// an optional debug HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"quantumassembler/internal/archive"
	"quantumassembler/internal/config"
	"quantumassembler/internal/core"
	"quantumassembler/internal/game"
	"quantumassembler/internal/httpapi"
	"quantumassembler/internal/logs"
	"quantumassembler/internal/persistence"
)

const appName = "quantum-assembler"

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config (default: search for "+config.DefaultRelPath+")")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg := loader.Config()

	log, level := logs.New(appName, cfg.Log)
	defer func() { _ = log.Sync() }()
	loader.Watch(func(next config.Config, err error) {
		if err != nil {
			log.Warn("config reload rejected", zap.Error(err))
			return
		}
		level.SetLevel(logs.ParseLevel(next.Log.Level))
		log.Info("config reloaded", zap.String("level", next.Log.Level))
	})
	log.Info("starting", zap.String("config", loader.Path()), zap.String("storage", cfg.Storage.Driver), zap.String("archive", cfg.Archive.Driver))

	store, err := persistence.Open(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open save store: %w", err)
	}
	defer func() { _ = store.Close() }()

	archiveStore, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := core.NewPrometheusRecorder(reg)
	if err != nil {
		return err
	}

	g, err := game.New(store,
		game.WithArchive(archive.NewArchiver(archiveStore, cfg.Archive.Prefix)),
		game.WithLogger(log),
		game.WithBalance(cfg.Balance),
		game.WithGridSize(cfg.Game.GridX, cfg.Game.GridY),
		game.WithMaxGridSize(cfg.Game.MaxGrid),
		game.WithTick(cfg.Game.Tick),
		game.WithAutosave(cfg.Game.Autosave),
		game.WithMetricsRecorder(recorder),
		game.WithTracer(core.NewLogTracer(logs.NewCoreLogger(log.Named("trace")), 256)),
	)
	if err != nil {
		return err
	}
	if _, err := g.Load(ctx); err != nil {
		return err
	}
	if err := core.RegisterResourceGauges(reg,
		func() float64 { e, _ := g.Rates(); return e },
		func() float64 { _, i := g.Rates(); return i },
	); err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- g.Run(ctx) }()

	var srv *httpapi.Server
	if cfg.HTTP.Enabled {
		gin.SetMode(cfg.HTTP.Mode)
		srv = httpapi.NewServer(cfg.HTTP.Addr, g, reg, log.Named("http"))
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server stopped", zap.Error(err))
			}
		}()
		log.Info("http listening", zap.String("addr", cfg.HTTP.Addr))
	}

	<-ctx.Done()
	log.Info("shutting down")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
	}
	return <-runErr
}
