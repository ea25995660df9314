package site

import (
	"fmt"
	"log/slog"

	"github.com/jakeisnt/quine/internal/config"
	qerrors "github.com/jakeisnt/quine/internal/errors"
	"github.com/jakeisnt/quine/internal/fspath"
	"github.com/jakeisnt/quine/internal/logfields"
	"github.com/jakeisnt/quine/internal/metrics"
)

// Resolver translates a requested path into a concrete node, transparently
// substituting a compileable source when the literal target does not exist.
// It is the one entry point external callers (CLI, dev server) use to
// bootstrap a build or serve a single file.
type Resolver struct {
	reg *Registry
	rec metrics.Recorder
}

// NewResolver wires a resolver over a registry. rec may be nil.
func NewResolver(reg *Registry, rec metrics.Recorder) *Resolver {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Resolver{reg: reg, rec: rec}
}

// Registry exposes the registry the resolver consults.
func (r *Resolver) Registry() *Registry { return r.reg }

// Resolve returns the node for a requested path, or (nil, nil) when nothing
// can satisfy it. Absence is an expected outcome the caller must handle; an
// error means the path resolved but its node could not be constructed.
//
// Order: literal file first; otherwise each source extension registered as
// able to produce the requested extension, in registration order, first
// existing match wins. Extensionless paths resolve to the directory variant
// regardless of registry contents.
func (r *Resolver) Resolve(p fspath.Path, s *config.Settings) (Node, error) {
	ext := p.Ext()

	if ext == "" {
		if !exists(s, p) {
			r.rec.IncResolveOutcome(metrics.ResolveMiss)
			return nil, nil
		}
		return &DirNode{loc: p, res: r}, nil
	}

	if exists(s, p) {
		r.rec.IncResolveOutcome(metrics.ResolveLiteral)
		return r.reg.Lookup(ext).New(p, r), nil
	}

	// Compile-target fallback: first existing source candidate wins. No
	// second candidate is attempted if the chosen one fails later.
	for _, srcExt := range r.reg.SourcesFor(ext) {
		candidate := p.WithExt(srcExt)
		if !exists(s, candidate) {
			continue
		}
		src := r.reg.Lookup(srcExt).New(candidate, r)
		c, ok := src.(compileable)
		if !ok {
			return nil, qerrors.New(qerrors.CategoryResolve, qerrors.SeverityError,
				fmt.Sprintf("variant for %q declares target %q but cannot compile", srcExt, ext))
		}
		derived, err := c.CompileTo(ext, s)
		if err != nil {
			return nil, err
		}
		slog.Debug("Resolved through compile target",
			logfields.Path(p.String()),
			logfields.Source(candidate.String()),
			logfields.Extension(ext))
		r.rec.IncResolveOutcome(metrics.ResolveDerived)
		return derived, nil
	}

	r.rec.IncResolveOutcome(metrics.ResolveMiss)
	return nil, nil
}

func exists(s *config.Settings, p fspath.Path) bool {
	_, err := s.FS.Stat(p.String())
	return err == nil
}

func errUnsupportedTarget(loc fspath.Path, ext string) error {
	return qerrors.New(qerrors.CategoryResolve, qerrors.SeverityError,
		fmt.Sprintf("%s cannot derive %q", loc, ext))
}
