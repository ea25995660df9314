package site

import (
	"fmt"

	"github.com/jakeisnt/quine/internal/config"
	qerrors "github.com/jakeisnt/quine/internal/errors"
	"github.com/jakeisnt/quine/internal/fspath"
)

// Constructor builds the concrete node variant for a location.
type Constructor func(loc fspath.Path, res *Resolver) Node

// Descriptor is the static metadata for one content-type variant: the
// extensions it claims and, optionally, the extensions it can produce from
// them via compilation.
type Descriptor struct {
	Name       string
	Extensions []string
	Targets    []string
	New        Constructor
}

// Registry maps extensions to handler descriptors and target extensions to
// the ordered source extensions that can produce them. It is immutable after
// construction; duplicate extension claims abort construction.
type Registry struct {
	byExt      map[string]Descriptor
	compileMap map[string][]string
	fallback   Descriptor
	transforms Transforms
}

// NewRegistry assembles a registry from an explicit descriptor list.
// Registration order is preserved in the compile map. A collision — two
// descriptors claiming the same extension — fails construction: a silent
// duplicate would let one content type shadow another depending on
// enumeration order.
func NewRegistry(fallback Descriptor, transforms Transforms, descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		byExt:      make(map[string]Descriptor),
		compileMap: make(map[string][]string),
		fallback:   fallback,
		transforms: transforms,
	}
	for _, d := range descriptors {
		for _, ext := range d.Extensions {
			if prev, exists := r.byExt[ext]; exists {
				return nil, fmt.Errorf("variant %s claims %q already claimed by %s: %w",
					d.Name, ext, prev.Name, qerrors.ErrExtensionCollision)
			}
			r.byExt[ext] = d
		}
		for _, target := range d.Targets {
			r.compileMap[target] = append(r.compileMap[target], d.Extensions...)
		}
	}
	return r, nil
}

// Lookup returns the descriptor registered for ext, falling back to the
// opaque text variant. It never fails.
func (r *Registry) Lookup(ext string) Descriptor {
	if d, ok := r.byExt[ext]; ok {
		return d
	}
	return r.fallback
}

// SourcesFor returns, in registration order, every source extension whose
// handler declares target as a compile target.
func (r *Registry) SourcesFor(target string) []string {
	return r.compileMap[target]
}

// Transforms returns the transform set the registry was built with.
func (r *Registry) Transforms() Transforms { return r.transforms }

// DefaultRegistry is the statically-declared handler set: every variant the
// site builder understands, assembled once at process start.
func DefaultRegistry(transforms Transforms) (*Registry, error) {
	fallback := Descriptor{
		Name:       "text",
		Extensions: []string{"txt"},
		New: func(loc fspath.Path, res *Resolver) Node {
			return &TextNode{fileNode{loc: loc, res: res}}
		},
	}
	return NewRegistry(fallback, transforms,
		fallback,
		Descriptor{
			Name:       "html",
			Extensions: []string{"html", "htm"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &HTMLNode{fileNode{loc: loc, res: res}}
			},
		},
		Descriptor{
			Name:       "markdown",
			Extensions: []string{"md"},
			Targets:    []string{"html"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &MarkdownNode{fileNode{loc: loc, res: res}}
			},
		},
		Descriptor{
			Name:       "scss",
			Extensions: []string{"scss"},
			Targets:    []string{"css"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &ScssNode{fileNode{loc: loc, res: res}}
			},
		},
		Descriptor{
			Name:       "css",
			Extensions: []string{"css"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &CSSNode{fileNode{loc: loc, res: res}}
			},
		},
		Descriptor{
			Name:       "typescript",
			Extensions: []string{"ts"},
			Targets:    []string{"js"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &TypeScriptNode{fileNode{loc: loc, res: res}}
			},
		},
		Descriptor{
			Name:       "javascript",
			Extensions: []string{"js"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &JavaScriptNode{fileNode{loc: loc, res: res}}
			},
		},
		Descriptor{
			Name:       "binary",
			Extensions: []string{"png", "jpg", "jpeg", "gif", "ico", "svg", "woff", "woff2", "pdf"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &BinaryNode{fileNode{loc: loc, res: res}}
			},
		},
	)
}

// compileable is implemented by variants that can derive a node of another
// extension from themselves. The resolver dispatches through it after a
// compile-target fallback match.
type compileable interface {
	CompileTo(ext string, s *config.Settings) (Node, error)
}
