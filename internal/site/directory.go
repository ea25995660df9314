package site

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/fspath"
)

var titleCaser = cases.Title(language.English)

// titleize turns a file or directory name into a human-readable listing
// title ("getting-started" -> "Getting Started").
func titleize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(name)
}

// DirNode is the directory variant. Its contents, recursive tree and
// rendered listing are computed once and never invalidated: a directory node
// is a single-shot snapshot of the filesystem at first-enumeration time.
// Consistency under concurrent filesystem mutation is explicitly not
// guaranteed.
type DirNode struct {
	loc fspath.Path
	res *Resolver

	contents    []Node
	contentsSet bool
	tree        []Node
	treeSet     bool
	listing     []byte
}

func (n *DirNode) Location() fspath.Path { return n.loc }

func (n *DirNode) DerivedFrom() Node { return nil }

// Contents returns the directory's immediate children as resolved nodes,
// sorted by name, snapshot at first call. Dotfiles are skipped.
func (n *DirNode) Contents(s *config.Settings) ([]Node, error) {
	if n.contentsSet {
		return n.contents, nil
	}
	entries, err := s.FS.ReadDir(n.loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", n.loc, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	nodes := make([]Node, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		child, err := n.res.Resolve(n.loc.Join(e.Name()), s)
		if err != nil {
			return nil, err
		}
		if child != nil {
			nodes = append(nodes, child)
		}
	}
	n.contents = nodes
	n.contentsSet = true
	return n.contents, nil
}

// Tree returns the flattened recursive descendant list (files and
// directories), snapshot at first call.
func (n *DirNode) Tree(s *config.Settings) ([]Node, error) {
	if n.treeSet {
		return n.tree, nil
	}
	contents, err := n.Contents(s)
	if err != nil {
		return nil, err
	}
	var flat []Node
	for _, child := range contents {
		flat = append(flat, child)
		if sub, ok := child.(*DirNode); ok {
			desc, err := sub.Tree(s)
			if err != nil {
				return nil, err
			}
			flat = append(flat, desc...)
		}
	}
	n.tree = flat
	n.treeSet = true
	return n.tree, nil
}

// indexNode returns the literal index page among the directory's contents,
// if one exists. A literal index short-circuits the generated listing.
func (n *DirNode) indexNode(s *config.Settings) (Node, error) {
	contents, err := n.Contents(s)
	if err != nil {
		return nil, err
	}
	for _, child := range contents {
		if child.Location().Name() == "index.html" {
			return child, nil
		}
	}
	return nil, nil
}

// Listing renders an HTML index of the directory's contents, cached for the
// node's lifetime.
func (n *DirNode) Listing(s *config.Settings) ([]byte, error) {
	if n.listing != nil {
		return n.listing, nil
	}
	contents, err := n.Contents(s)
	if err != nil {
		return nil, err
	}

	title := titleize(n.loc.Name())
	if n.loc.String() == s.SourcePath().String() && s.Site.Name != "" {
		title = s.Site.Name
	}

	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n</head>\n<body>\n", title)
	fmt.Fprintf(&buf, "<h1>%s</h1>\n<ul>\n", title)
	for _, child := range contents {
		name := child.Location().Name()
		href := name
		if _, ok := child.(*DirNode); ok {
			href += "/"
		}
		fmt.Fprintf(&buf, "<li><a href=%q>%s</a></li>\n", href, titleize(strings.TrimSuffix(name, "."+child.Location().Ext())))
	}
	buf.WriteString("</ul>\n</body>\n</html>\n")
	n.listing = buf.Bytes()
	return n.listing, nil
}

func (n *DirNode) Read(s *config.Settings) ([]byte, error) {
	return n.Listing(s)
}

// Dependencies returns the directory's immediate contents: building a
// directory builds everything reachable under it.
func (n *DirNode) Dependencies(s *config.Settings) ([]Node, error) {
	return n.Contents(s)
}

func (n *DirNode) Serve(s *config.Settings) (Payload, error) {
	if idx, err := n.indexNode(s); err != nil {
		return Payload{}, err
	} else if idx != nil {
		return idx.Serve(s)
	}
	data, err := n.Listing(s)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Content: data, MimeType: mimeFor("html")}, nil
}

// Write materializes the listing as index.html under the directory's target
// location. A literal index.html among the contents wins: it will be written
// by its own node, so the generated listing steps aside.
func (n *DirNode) Write(s *config.Settings) error {
	idx, err := n.indexNode(s)
	if err != nil {
		return err
	}
	if idx != nil {
		return nil
	}
	data, err := n.Listing(s)
	if err != nil {
		return err
	}
	return writeOutput(s, n.loc.Join("index.html"), data)
}
