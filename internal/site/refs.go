package site

import (
	"strings"

	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/fspath"
)

// externalRef reports whether a reference points outside the source tree
// (another host, a protocol, a fragment) and is therefore not a dependency.
func externalRef(ref string) bool {
	if ref == "" {
		return true
	}
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return true
	}
	if strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "tel:") {
		return true
	}
	return strings.Contains(ref, "://")
}

// refPath converts a reference found in from's content into an absolute
// source path: site-absolute references root at the source directory,
// anything else resolves against the referencing file's directory.
func refPath(s *config.Settings, from fspath.Path, ref string) fspath.Path {
	// Drop query string and fragment.
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if strings.HasPrefix(ref, "/") {
		return s.SourcePath().Join(ref)
	}
	return from.Dir().Join(ref)
}

// resolveRefs maps raw reference strings to nodes through the resolver.
// External references and references that resolve to nothing are silently
// dropped: a dangling link is a content-authoring concern, not a build-engine
// one.
func resolveRefs(res *Resolver, s *config.Settings, from fspath.Path, refs []string) ([]Node, error) {
	seen := make(map[string]bool, len(refs))
	nodes := make([]Node, 0, len(refs))
	for _, ref := range refs {
		if externalRef(ref) {
			continue
		}
		p := refPath(s, from, ref)
		if p.String() == from.Dir().String() {
			continue
		}
		if seen[p.String()] {
			continue
		}
		seen[p.String()] = true

		node, err := res.Resolve(p, s)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
