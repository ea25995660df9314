// Package build drives the recursive, visited-set-guarded graph traversal:
// write each node, enumerate its dependencies through the resolver, recurse.
package build

import (
	"context"
	"time"

	"github.com/jakeisnt/quine/internal/config"
	qerrors "github.com/jakeisnt/quine/internal/errors"
	"github.com/jakeisnt/quine/internal/logfields"
	"github.com/jakeisnt/quine/internal/metrics"
	"github.com/jakeisnt/quine/internal/observability"
	"github.com/jakeisnt/quine/internal/site"
	"github.com/jakeisnt/quine/internal/util/sets"
)

// conventionalIgnores are version-control and dependency-manager directories
// every build skips without configuration.
var conventionalIgnores = []string{".git", ".svn", ".hg", "node_modules"}

// Builder runs depth-first, pre-order builds under one settings snapshot.
// The traversal is single-threaded; the visited-set is the only shared state
// and it is threaded explicitly through every recursive call.
type Builder struct {
	settings *config.Settings
	rec      metrics.Recorder
}

// New constructs a builder. rec may be nil.
func New(s *config.Settings, rec metrics.Recorder) *Builder {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Builder{settings: s, rec: rec}
}

// SeedVisited returns the initial visited-set for a build run: all configured
// ignore paths, the output directory itself (so the build cannot recurse into
// its own output), and conventional version-control/dependency-manager
// directories. Callers must seed before the first Build call.
func SeedVisited(s *config.Settings) sets.Set[string] {
	visited := sets.New(s.TargetPath().String())
	for _, p := range s.IgnorePaths() {
		visited.Add(p.String())
	}
	for _, name := range conventionalIgnores {
		visited.Add(s.SourcePath().Join(name).String())
	}
	return visited
}

// Build writes node and recursively builds its dependencies, exactly once
// per absolute path.
//
// The path is marked visited before any further work, so self-references and
// cycles terminate, and a node that fails mid-write is not retried within
// the run. A write failure aborts this node's subtree and propagates; a
// dependency-enumeration failure downgrades to "no further dependencies"; a
// failure inside one dependency's subtree is logged here and its siblings
// still proceed.
func (b *Builder) Build(ctx context.Context, node site.Node, visited sets.Set[string]) error {
	key := node.Location().String()
	if visited.Has(key) {
		return nil
	}
	visited.Add(key)

	if err := node.Write(b.settings); err != nil {
		return qerrors.Wrap(err, qerrors.CategoryBuild, qerrors.SeverityFatal,
			"failed to write "+key)
	}
	b.rec.IncNodeWritten(node.Location().Ext())
	observability.DebugContext(ctx, "Node written", logfields.Path(key))

	deps, err := node.Dependencies(b.settings)
	if err != nil {
		observability.WarnContext(ctx, "Dependency enumeration failed, continuing without",
			logfields.Path(key), logfields.Error(err))
		return nil
	}

	for _, dep := range deps {
		if err := b.Build(ctx, dep, visited); err != nil {
			b.rec.IncDependencyFailure()
			observability.ErrorContext(ctx, "Dependency subtree failed, continuing with siblings",
				logfields.Path(dep.Location().String()),
				logfields.Parent(key),
				logfields.Error(err))
		}
	}
	return nil
}

// Stats summarizes one completed build run.
type Stats struct {
	BuildID  string
	Written  int
	Duration time.Duration
}

// Run performs one full build from the configured source root: resolve the
// root, seed the visited-set, traverse. A root that resolves to nothing is
// fatal; within the graph, partial-failure semantics apply.
func Run(ctx context.Context, res *site.Resolver, s *config.Settings, rec metrics.Recorder) (Stats, error) {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	ctx = observability.WithBuildID(ctx, "")
	start := time.Now()

	root, err := res.Resolve(s.SourcePath(), s)
	if err != nil {
		return Stats{}, err
	}
	if root == nil {
		return Stats{}, qerrors.New(qerrors.CategoryBuild, qerrors.SeverityFatal,
			"source root "+s.Source+" does not exist")
	}

	visited := SeedVisited(s)
	seeded := visited.Len()

	b := New(s, rec)
	if err := b.Build(ctx, root, visited); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		BuildID:  observability.BuildID(ctx),
		Written:  visited.Len() - seeded,
		Duration: time.Since(start),
	}
	rec.ObserveBuildDuration(stats.Duration)
	observability.InfoContext(ctx, "Build complete",
		logfields.Count(stats.Written),
		logfields.DurationMS(float64(stats.Duration.Milliseconds())),
		logfields.Target(s.Target))
	return stats, nil
}
