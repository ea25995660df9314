package site

import (
	"regexp"

	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/fspath"
)

// Static import forms only; dynamic import() with computed arguments cannot
// be resolved without executing the module.
var jsImportRe = regexp.MustCompile(`(?m)^\s*(?:import|export)\b[^'"\n]*from\s+["']([^"']+)["']|^\s*import\s+["']([^"']+)["']`)

// extractJSRefs pulls module specifiers from import/export statements,
// keeping only relative ones (bare specifiers name packages, not files).
// Extensionless specifiers resolve to the compiled form, which the resolver
// maps back to a source via compile-target fallback.
func extractJSRefs(loc fspath.Path, data []byte) []string {
	var refs []string
	for _, m := range jsImportRe.FindAllSubmatch(data, -1) {
		spec := string(m[1])
		if spec == "" {
			spec = string(m[2])
		}
		if spec == "" {
			continue
		}
		if spec[0] != '.' && spec[0] != '/' {
			continue
		}
		if fspath.New(loc.Dir().String(), spec).Ext() == "" {
			spec += ".js"
		}
		refs = append(refs, spec)
	}
	return refs
}

// JavaScriptNode is a script: copied through, with static imports as
// dependencies.
type JavaScriptNode struct {
	fileNode
}

func (n *JavaScriptNode) Dependencies(s *config.Settings) ([]Node, error) {
	data, err := n.Read(s)
	if err != nil {
		return nil, err
	}
	return resolveRefs(n.res, s, n.loc, extractJSRefs(n.loc, data))
}

// TypeScriptNode is a script source that can expose itself as compiled
// JavaScript.
type TypeScriptNode struct {
	fileNode
}

// JS derives the compiled script node for this source.
func (n *TypeScriptNode) JS() Node {
	return Derive(n, n.res.reg.Transforms().TypeScript, "js")
}

// CompileTo dispatches the extension-named derivations this variant declares.
func (n *TypeScriptNode) CompileTo(ext string, _ *config.Settings) (Node, error) {
	if ext == "js" {
		return n.JS(), nil
	}
	return nil, errUnsupportedTarget(n.loc, ext)
}

func (n *TypeScriptNode) Dependencies(s *config.Settings) ([]Node, error) {
	data, err := n.Read(s)
	if err != nil {
		return nil, err
	}
	return resolveRefs(n.res, s, n.loc, extractJSRefs(n.loc, data))
}
