package site

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/jakeisnt/quine/internal/config"
)

// HTMLNode is a page: its dependencies are every href/src-style reference in
// the document. Rendering of the page itself is the templating layer's
// business; the node copies content through.
type HTMLNode struct {
	fileNode
}

// refAttrs are the attributes that carry file references, per element.
var refAttrs = map[string][]string{
	"a":      {"href"},
	"link":   {"href"},
	"img":    {"src"},
	"script": {"src"},
	"audio":  {"src"},
	"video":  {"src", "poster"},
	"source": {"src"},
	"iframe": {"src"},
	"embed":  {"src"},
	"object": {"data"},
}

// Dependencies parses the document and resolves every reference it carries,
// in document order.
func (n *HTMLNode) Dependencies(s *config.Settings) ([]Node, error) {
	data, err := n.Read(s)
	if err != nil {
		return nil, err
	}
	refs, err := extractHTMLRefs(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", n.loc, err)
	}
	return resolveRefs(n.res, s, n.loc, refs)
}

// extractHTMLRefs walks the parsed document collecting reference attribute
// values in document order.
func extractHTMLRefs(data []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if attrs, ok := refAttrs[strings.ToLower(node.Data)]; ok {
				for _, want := range attrs {
					for _, a := range node.Attr {
						if strings.EqualFold(a.Key, want) && a.Val != "" {
							refs = append(refs, a.Val)
						}
					}
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}
