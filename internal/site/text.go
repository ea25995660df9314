package site

// TextNode is the opaque text variant: content copied through verbatim. It is
// also the registry's designated fallback for unregistered extensions.
type TextNode struct {
	fileNode
}

// BinaryNode is the opaque binary variant (images, fonts, documents). Same
// copy-through behavior as TextNode; kept distinct so the registry can claim
// media extensions explicitly and serve accurate content types.
type BinaryNode struct {
	fileNode
}
