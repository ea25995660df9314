package site

import (
	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/markdown"
)

// MarkdownNode is a document source. Resolved literally it copies through
// like any text file; requested as "html" it derives a rendered page.
type MarkdownNode struct {
	fileNode
}

// HTML derives the rendered page node for this document.
func (n *MarkdownNode) HTML() Node {
	return Derive(n, n.res.reg.Transforms().Markdown, "html")
}

// CompileTo dispatches the extension-named derivations this variant declares.
func (n *MarkdownNode) CompileTo(ext string, _ *config.Settings) (Node, error) {
	if ext == "html" {
		return n.HTML(), nil
	}
	return nil, errUnsupportedTarget(n.loc, ext)
}

// Dependencies resolves every link, image and reference definition in the
// document.
func (n *MarkdownNode) Dependencies(s *config.Settings) ([]Node, error) {
	data, err := n.Read(s)
	if err != nil {
		return nil, err
	}
	links, err := markdown.ExtractLinks(data)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(links))
	for _, l := range links {
		refs = append(refs, l.Destination)
	}
	return resolveRefs(n.res, s, n.loc, refs)
}
