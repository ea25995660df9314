// Package server is the development server: it serves any source path
// through the resolver (so a compiled target resolves identically to a full
// build), pushes live-reload events after watcher-triggered rebuilds, and
// exposes build history and metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/jakeisnt/quine/internal/build"
	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/logfields"
	"github.com/jakeisnt/quine/internal/metrics"
	"github.com/jakeisnt/quine/internal/site"
	"github.com/jakeisnt/quine/internal/state"
)

// Options configures optional server collaborators.
type Options struct {
	// Recorder receives request and build metrics. Defaults to noop.
	Recorder metrics.Recorder
	// PromRegistry, when set, is exposed at /metrics.
	PromRegistry *prom.Registry
	// Store, when set, records watcher/scheduled rebuilds and feeds /status.
	Store *state.Store
	// DisableWatch turns off the fsnotify watcher (tests).
	DisableWatch bool
}

// Server serves the site during development.
type Server struct {
	settings *config.Settings
	res      *site.Resolver
	opts     Options
	hub      *reloadHub
	httpSrv  *http.Server
	sched    gocron.Scheduler
}

// New constructs a dev server over a resolver.
func New(settings *config.Settings, res *site.Resolver, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{
		settings: settings,
		res:      res,
		opts:     opts,
		hub:      newReloadHub(),
	}
}

// Start binds the port, then launches the HTTP server, the source watcher
// and the optional periodic rebuild schedule. Returns once listening.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.settings.Serve.Port)
	// Pre-bind so a taken port surfaces immediately instead of inside the
	// serve goroutine.
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/__reload", s.hub)
	mux.HandleFunc("/__status", s.handleStatus)
	if s.opts.PromRegistry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.PromRegistry))
	}
	mux.HandleFunc("/", s.handleContent)

	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("Dev server error", logfields.Error(err))
		}
	}()

	if !s.opts.DisableWatch {
		go func() {
			if err := s.watchSource(ctx); err != nil {
				slog.Error("Watcher stopped", logfields.Error(err))
			}
		}()
	}

	if err := s.startSchedule(); err != nil {
		return err
	}

	slog.Info("Dev server started", slog.Int("port", s.settings.Serve.Port),
		logfields.Source(s.settings.Source))
	return nil
}

// startSchedule sets up the optional periodic full rebuild.
func (s *Server) startSchedule() error {
	if s.settings.Serve.RebuildEvery == "" {
		return nil
	}
	every, err := time.ParseDuration(s.settings.Serve.RebuildEvery)
	if err != nil {
		return fmt.Errorf("invalid rebuild interval: %w", err)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { s.rebuild(context.Background()) }),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule rebuild: %w", err)
	}
	sched.Start()
	s.sched = sched
	slog.Info("Periodic rebuild scheduled", slog.String("every", every.String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("dev server shutdown: %w", err)
		}
	}
	slog.Info("Dev server stopped")
	return nil
}

// rebuild runs one full build, records it, and notifies browsers.
func (s *Server) rebuild(ctx context.Context) {
	stats, err := build.Run(ctx, s.res, s.settings, s.opts.Recorder)
	if s.opts.Store != nil {
		rec := state.Record{
			BuildID:    stats.BuildID,
			StartedAt:  time.Now().Add(-stats.Duration),
			DurationMS: stats.Duration.Milliseconds(),
			Written:    stats.Written,
			Success:    err == nil,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if serr := s.opts.Store.Append(ctx, rec); serr != nil {
			slog.Warn("Failed to record build", logfields.Error(serr))
		}
	}
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return
	}
	s.hub.Broadcast()
}

// handleContent resolves the request path against the source tree and serves
// the node's payload. Absence is a 404; a construction or read error is 500.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.TrimPrefix(r.URL.Path, "/")
	loc := s.settings.SourcePath().Join(reqPath)

	node, err := s.res.Resolve(loc, s.settings)
	if err != nil {
		s.opts.Recorder.IncHTTPRequest(http.StatusInternalServerError)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if node == nil {
		s.opts.Recorder.IncHTTPRequest(http.StatusNotFound)
		http.NotFound(w, r)
		return
	}

	payload, err := node.Serve(s.settings)
	if err != nil {
		s.opts.Recorder.IncHTTPRequest(http.StatusInternalServerError)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	content := payload.Content
	if strings.HasPrefix(payload.MimeType, "text/html") {
		content = append(append([]byte{}, content...), []byte(reloadScript)...)
	}

	w.Header().Set("Content-Type", payload.MimeType)
	s.opts.Recorder.IncHTTPRequest(http.StatusOK)
	_, _ = w.Write(content)
}

// handleStatus reports recent build history.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type statusResponse struct {
		Site   string         `json:"site"`
		Builds []state.Record `json:"builds"`
	}
	resp := statusResponse{Site: s.settings.Site.Name}
	if s.opts.Store != nil {
		records, err := s.opts.Store.Recent(r.Context(), 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Builds = records
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
