package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/jakeisnt/quine/internal/build"
	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/deploy"
	"github.com/jakeisnt/quine/internal/logfields"
	"github.com/jakeisnt/quine/internal/metrics"
	"github.com/jakeisnt/quine/internal/server"
	"github.com/jakeisnt/quine/internal/site"
	"github.com/jakeisnt/quine/internal/state"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"quine.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct{} `cmd:"" help:"Build the site from the source tree into the target directory"`

	Serve struct {
		Port int `short:"p" help:"Override the configured port"`
	} `cmd:"" help:"Serve the site with live reload, rebuilding on change"`

	Deploy struct{} `cmd:"" help:"Build the site and push the target tree to the deploy remote"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI)

	if kctx.Command() == "init" {
		setupLogging(slog.LevelInfo, config.LogFormatText)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration written", logfields.Path(CLI.Config))
		return
	}

	settings, err := config.Load(CLI.Config)
	if err != nil {
		setupLogging(slog.LevelInfo, config.LogFormatText)
		slog.Error("Failed to load configuration", logfields.Error(err))
		os.Exit(1)
	}

	level := settings.SlogLevel()
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	setupLogging(level, settings.Log.Format)

	switch kctx.Command() {
	case "build":
		if err := runBuild(settings); err != nil {
			slog.Error("Build failed", logfields.Error(err))
			os.Exit(1)
		}
	case "serve":
		if CLI.Serve.Port != 0 {
			settings.Serve.Port = CLI.Serve.Port
		}
		if err := runServe(settings); err != nil {
			slog.Error("Serve failed", logfields.Error(err))
			os.Exit(1)
		}
	case "deploy":
		if err := runDeploy(settings); err != nil {
			slog.Error("Deploy failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func setupLogging(level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newResolver(rec metrics.Recorder) (*site.Resolver, error) {
	reg, err := site.DefaultRegistry(site.DefaultTransforms())
	if err != nil {
		return nil, err
	}
	return site.NewResolver(reg, rec), nil
}

func runBuild(settings *config.Settings) error {
	res, err := newResolver(nil)
	if err != nil {
		return err
	}
	stats, err := build.Run(context.Background(), res, settings, nil)
	if err != nil {
		return err
	}
	slog.Info("Site built",
		logfields.Count(stats.Written),
		logfields.Target(settings.Target),
		logfields.DurationMS(float64(stats.Duration.Milliseconds())))
	return nil
}

func runServe(settings *config.Settings) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	promReg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(promReg)

	res, err := newResolver(rec)
	if err != nil {
		return err
	}

	store, err := openHistory(settings)
	if err != nil {
		slog.Warn("Build history unavailable", logfields.Error(err))
	} else {
		defer store.Close()
	}

	// Initial build so the target tree exists before the first request.
	if _, err := build.Run(ctx, res, settings, rec); err != nil {
		slog.Warn("Initial build failed, serving sources anyway", logfields.Error(err))
	}

	srv := server.New(settings, res, server.Options{
		Recorder:     rec,
		PromRegistry: promReg,
		Store:        store,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	return srv.Stop(stopCtx)
}

func runDeploy(settings *config.Settings) error {
	if err := runBuild(settings); err != nil {
		return err
	}
	return deploy.NewClient(settings).Deploy(context.Background())
}

// openHistory places the build-history database under the user cache
// directory, outside the watched source tree.
func openHistory(settings *config.Settings) (*state.Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	dir := filepath.Join(cacheDir, "quine")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := filepath.Base(settings.Source) + ".db"
	return state.Open(filepath.Join(dir, name))
}
