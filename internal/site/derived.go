package site

import (
	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/fspath"
)

// Transform computes the derived content for a source node. It runs lazily:
// only when the derived node's content is first read, never at derivation
// time.
type Transform func(src Node, s *config.Settings) ([]byte, error)

// DerivedNode is a virtual file: it behaves as targetExt while its content
// comes from transforming another node. DerivedFrom keeps the provenance
// link back to the source; many derived nodes may share one source.
type DerivedNode struct {
	source    Node
	transform Transform
	loc       fspath.Path

	data   []byte
	loaded bool
}

// Derive produces a node whose location swaps the source's extension for
// targetExt and whose content is transform(source), computed on first read.
func Derive(source Node, transform Transform, targetExt string) *DerivedNode {
	return &DerivedNode{
		source:    source,
		transform: transform,
		loc:       source.Location().WithExt(targetExt),
	}
}

func (n *DerivedNode) Location() fspath.Path { return n.loc }

func (n *DerivedNode) DerivedFrom() Node { return n.source }

func (n *DerivedNode) Read(s *config.Settings) ([]byte, error) {
	if n.loaded {
		return n.data, nil
	}
	data, err := n.transform(n.source, s)
	if err != nil {
		return nil, err
	}
	n.data = data
	n.loaded = true
	return n.data, nil
}

// Dependencies delegates to the source node: the derived view references the
// same underlying files its source does.
func (n *DerivedNode) Dependencies(s *config.Settings) ([]Node, error) {
	return n.source.Dependencies(s)
}

func (n *DerivedNode) Serve(s *config.Settings) (Payload, error) {
	data, err := n.Read(s)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Content: data, MimeType: mimeFor(n.loc.Ext())}, nil
}

func (n *DerivedNode) Write(s *config.Settings) error {
	data, err := n.Read(s)
	if err != nil {
		return err
	}
	return writeOutput(s, n.loc, data)
}
