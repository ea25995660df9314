package site

import (
	"regexp"

	"github.com/jakeisnt/quine/internal/config"
)

// No CSS parser dependency: the two reference forms stylesheets carry are
// regular enough for patterns (same judgement as the markdown permissive
// pass).
var (
	cssImportRe = regexp.MustCompile(`@import\s+(?:url\()?["']?([^"')\s;]+)["']?\)?`)
	cssURLRe    = regexp.MustCompile(`url\(\s*["']?([^"')\s]+)["']?\s*\)`)
)

// extractCSSRefs pulls @import targets and url(...) media references.
func extractCSSRefs(data []byte) []string {
	var refs []string
	for _, m := range cssImportRe.FindAllSubmatch(data, -1) {
		refs = append(refs, string(m[1]))
	}
	for _, m := range cssURLRe.FindAllSubmatch(data, -1) {
		refs = append(refs, string(m[1]))
	}
	return refs
}

// CSSNode is a plain stylesheet: copied through, with @import and url()
// references as dependencies.
type CSSNode struct {
	fileNode
}

func (n *CSSNode) Dependencies(s *config.Settings) ([]Node, error) {
	data, err := n.Read(s)
	if err != nil {
		return nil, err
	}
	return resolveRefs(n.res, s, n.loc, extractCSSRefs(data))
}

// ScssNode is a stylesheet source that can expose itself as compiled CSS.
type ScssNode struct {
	fileNode
}

// CSS derives the compiled stylesheet node for this source.
func (n *ScssNode) CSS() Node {
	return Derive(n, n.res.reg.Transforms().Scss, "css")
}

// CompileTo dispatches the extension-named derivations this variant declares.
func (n *ScssNode) CompileTo(ext string, _ *config.Settings) (Node, error) {
	if ext == "css" {
		return n.CSS(), nil
	}
	return nil, errUnsupportedTarget(n.loc, ext)
}

func (n *ScssNode) Dependencies(s *config.Settings) ([]Node, error) {
	data, err := n.Read(s)
	if err != nil {
		return nil, err
	}
	return resolveRefs(n.res, s, n.loc, extractCSSRefs(data))
}
