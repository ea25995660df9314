// Package site implements the polymorphic file-resolution core: the content
// type registry, the node variants, the derivation (virtual file) mechanism
// and the resolver with compile-target fallback.
package site

import (
	"fmt"
	"io"

	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/fspath"
)

// Payload is what a node hands the development server: rendered content plus
// its content type. It must be content-equivalent to what Write persists.
type Payload struct {
	Content  []byte
	MimeType string
}

// Node is the polymorphic unit of the dependency graph: one file or
// directory of some concrete kind.
//
// Read is idempotent and may cache internally. Write persists the node's
// served content under the settings' target directory, creating intermediate
// directories; a Write failure is fatal for the node's subtree. Dependencies
// enumerates referenced nodes through the resolver without writing anything;
// references that resolve to nothing are dropped, not errors. Settings is
// threaded explicitly through every operation and must never be mutated.
type Node interface {
	Location() fspath.Path
	DerivedFrom() Node
	Read(s *config.Settings) ([]byte, error)
	Write(s *config.Settings) error
	Dependencies(s *config.Settings) ([]Node, error)
	Serve(s *config.Settings) (Payload, error)
}

// fileNode is the embedded base for every on-disk variant: a location, the
// resolver that created it, and a one-shot content cache.
type fileNode struct {
	loc    fspath.Path
	res    *Resolver
	data   []byte
	loaded bool
}

func (n *fileNode) Location() fspath.Path { return n.loc }

func (n *fileNode) DerivedFrom() Node { return nil }

func (n *fileNode) Read(s *config.Settings) ([]byte, error) {
	if n.loaded {
		return n.data, nil
	}
	f, err := s.FS.Open(n.loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", n.loc, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", n.loc, err)
	}
	n.data = data
	n.loaded = true
	return n.data, nil
}

func (n *fileNode) Serve(s *config.Settings) (Payload, error) {
	data, err := n.Read(s)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Content: data, MimeType: mimeFor(n.loc.Ext())}, nil
}

func (n *fileNode) Write(s *config.Settings) error {
	data, err := n.Read(s)
	if err != nil {
		return err
	}
	return writeOutput(s, n.loc, data)
}

func (n *fileNode) Dependencies(_ *config.Settings) ([]Node, error) {
	return nil, nil
}

// outputPath maps a source location into the target tree, mirroring the
// source-relative structure.
func outputPath(s *config.Settings, loc fspath.Path) fspath.Path {
	return s.TargetPath().Join(loc.Rel(s.SourcePath()))
}

// writeOutput persists content at the target location for loc, creating
// intermediate directories as needed.
func writeOutput(s *config.Settings, loc fspath.Path, content []byte) error {
	out := outputPath(s, loc)
	if err := s.FS.MkdirAll(out.Dir().String(), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", out.Dir(), err)
	}
	f, err := s.FS.Create(out.String())
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", out, err)
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", out, err)
	}
	return nil
}
