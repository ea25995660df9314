package site

import (
	"fmt"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/jakeisnt/quine/internal/config"
	qerrors "github.com/jakeisnt/quine/internal/errors"
	"github.com/jakeisnt/quine/internal/fspath"
)

// testSettings returns settings over an in-memory filesystem rooted at /src.
func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		Site:   config.SiteConfig{Name: "Test Site", URL: "https://test.example"},
		Source: "/src",
		Target: "/out",
		FS:     memfs.New(),
	}
}

func writeFile(t *testing.T, s *config.Settings, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(s.FS, path, []byte(content), 0o644))
}

// testTransforms are deterministic fakes standing in for the external
// compilers.
func testTransforms() Transforms {
	return Transforms{
		Scss: func(src Node, s *config.Settings) ([]byte, error) {
			data, err := src.Read(s)
			if err != nil {
				return nil, err
			}
			return []byte("compiled-css:" + string(data)), nil
		},
		TypeScript: func(src Node, s *config.Settings) ([]byte, error) {
			data, err := src.Read(s)
			if err != nil {
				return nil, err
			}
			return []byte("compiled-js:" + string(data)), nil
		},
		Markdown: markdownPageTransform,
	}
}

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	reg, err := DefaultRegistry(testTransforms())
	require.NoError(t, err)
	return NewResolver(reg, nil)
}

func readOutput(t *testing.T, s *config.Settings, path string) string {
	t.Helper()
	data, err := util.ReadFile(s.FS, path)
	require.NoError(t, err)
	return string(data)
}

func TestRegistry_CollisionFailsConstruction(t *testing.T) {
	mk := func(name string) Descriptor {
		return Descriptor{
			Name:       name,
			Extensions: []string{"foo"},
			New: func(loc fspath.Path, res *Resolver) Node {
				return &TextNode{fileNode{loc: loc, res: res}}
			},
		}
	}
	fallback := mk("fallback")
	fallback.Extensions = []string{"txt"}

	_, err := NewRegistry(fallback, Transforms{}, mk("first"), mk("second"))
	require.Error(t, err)
	require.ErrorIs(t, err, qerrors.ErrExtensionCollision)
	require.Contains(t, err.Error(), "foo")
}

func TestRegistry_LookupFallsBackToText(t *testing.T) {
	reg, err := DefaultRegistry(testTransforms())
	require.NoError(t, err)
	d := reg.Lookup("xyz")
	require.Equal(t, "text", d.Name)
}

func TestRegistry_SourcesForRegistrationOrder(t *testing.T) {
	reg, err := DefaultRegistry(testTransforms())
	require.NoError(t, err)
	require.Equal(t, []string{"md"}, reg.SourcesFor("html"))
	require.Equal(t, []string{"scss"}, reg.SourcesFor("css"))
	require.Equal(t, []string{"ts"}, reg.SourcesFor("js"))
	require.Empty(t, reg.SourcesFor("png"))
}

func TestResolver_LiteralFileWins(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/style.css", "body {}")
	writeFile(t, s, "/src/style.scss", "$x: 1;")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/style.css"), s)
	require.NoError(t, err)
	require.NotNil(t, node)
	require.IsType(t, &CSSNode{}, node)
	require.Nil(t, node.DerivedFrom())
}

func TestResolver_CompileFallbackDerives(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/style.scss", "$x: 1;")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/style.css"), s)
	require.NoError(t, err)
	require.NotNil(t, node)
	require.Equal(t, "/src/style.css", node.Location().String())

	src := node.DerivedFrom()
	require.NotNil(t, src)
	require.Equal(t, "/src/style.scss", src.Location().String())

	data, err := node.Read(s)
	require.NoError(t, err)
	require.Equal(t, "compiled-css:$x: 1;", string(data))
}

func TestResolver_MissIsAbsentNotError(t *testing.T) {
	s := testSettings(t)
	node, err := testResolver(t).Resolve(fspath.Abs("/src/missing.css"), s)
	require.NoError(t, err)
	require.Nil(t, node)
}

func TestResolver_ExtensionlessPathIsDirectory(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/docs/a.md", "# A")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/docs"), s)
	require.NoError(t, err)
	require.IsType(t, &DirNode{}, node)
}

func TestResolver_MissingDirectoryIsAbsent(t *testing.T) {
	s := testSettings(t)
	node, err := testResolver(t).Resolve(fspath.Abs("/src/nothing"), s)
	require.NoError(t, err)
	require.Nil(t, node)
}

func TestDerive_TransformIsLazyAndCached(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/app.ts", "let x = 1")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/app.ts"), s)
	require.NoError(t, err)

	calls := 0
	derived := Derive(node, func(src Node, s *config.Settings) ([]byte, error) {
		calls++
		return []byte("out"), nil
	}, "js")

	require.Equal(t, "/src/app.js", derived.Location().String())
	require.Same(t, node, derived.DerivedFrom())
	require.Zero(t, calls, "transform must not run at derivation time")

	_, err = derived.Read(s)
	require.NoError(t, err)
	_, err = derived.Serve(s)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "transform runs once, on first read")
}

func TestDerivedNode_WriteMatchesServe(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/app.ts", "let x = 1")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/app.js"), s)
	require.NoError(t, err)
	require.NotNil(t, node)

	payload, err := node.Serve(s)
	require.NoError(t, err)
	require.Equal(t, "compiled-js:let x = 1", string(payload.Content))
	require.Contains(t, payload.MimeType, "javascript")

	require.NoError(t, node.Write(s))
	require.Equal(t, string(payload.Content), readOutput(t, s, "/out/app.js"))
}

func TestHTMLNode_Dependencies(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/index.html", `<html><head>
<link rel="stylesheet" href="style.css">
<script src="app.js"></script>
</head><body>
<a href="https://example.com/external">ext</a>
<a href="#section">frag</a>
<img src="missing.png">
<a href="about.html">about</a>
</body></html>`)
	writeFile(t, s, "/src/style.scss", "$x: 1;")
	writeFile(t, s, "/src/app.ts", "let x = 1")
	writeFile(t, s, "/src/about.html", "<html></html>")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/index.html"), s)
	require.NoError(t, err)

	deps, err := node.Dependencies(s)
	require.NoError(t, err)

	var locs []string
	for _, d := range deps {
		locs = append(locs, d.Location().String())
	}
	// External, fragment and missing references drop out; compile fallback
	// substitutes the scss/ts sources for the requested targets.
	require.Equal(t, []string{"/src/style.css", "/src/app.js", "/src/about.html"}, locs)
}

func TestMarkdownNode_DependenciesAndHTMLDerivation(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/post.md", "See [about](about.md) and ![pic](pic.png).\n")
	writeFile(t, s, "/src/about.md", "# About\n")
	writeFile(t, s, "/src/pic.png", "\x89PNG")

	res := testResolver(t)
	node, err := res.Resolve(fspath.Abs("/src/post.md"), s)
	require.NoError(t, err)

	deps, err := node.Dependencies(s)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	require.Equal(t, "/src/about.md", deps[0].Location().String())
	require.Equal(t, "/src/pic.png", deps[1].Location().String())

	// Requesting the html form derives a rendered page.
	page, err := res.Resolve(fspath.Abs("/src/post.html"), s)
	require.NoError(t, err)
	require.NotNil(t, page)
	data, err := page.Read(s)
	require.NoError(t, err)
	require.Contains(t, string(data), "<title>Post · Test Site</title>")
	require.Contains(t, string(data), `<a href="about.md">about</a>`)
}

func TestCSSRefExtraction(t *testing.T) {
	refs := extractCSSRefs([]byte(`
@import "base.css";
@import 'reset.css';
body { background: url(bg.png); }
`))
	require.Equal(t, []string{"base.css", "reset.css", "bg.png"}, refs)
}

func TestJSRefExtraction(t *testing.T) {
	loc := fspath.Abs("/src/app.ts")
	refs := extractJSRefs(loc, []byte(`
import { a } from "./util";
import "./styles.css";
export { b } from "../shared/lib.js";
import fmt from "left-pad";
`))
	require.Equal(t, []string{"./util.js", "./styles.css", "../shared/lib.js"}, refs)
}

func TestDirectory_SnapshotCaches(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/docs/a.md", "# A")
	writeFile(t, s, "/src/docs/b.md", "# B")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/docs"), s)
	require.NoError(t, err)
	dir := node.(*DirNode)

	contents, err := dir.Contents(s)
	require.NoError(t, err)
	require.Len(t, contents, 2)

	// Filesystem changes after first enumeration are invisible: the node is
	// a single-shot snapshot.
	writeFile(t, s, "/src/docs/c.md", "# C")
	again, err := dir.Contents(s)
	require.NoError(t, err)
	require.Len(t, again, 2)
}

func TestDirectory_TreeFlattensDescendants(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/a.md", "# A")
	writeFile(t, s, "/src/sub/b.md", "# B")
	writeFile(t, s, "/src/sub/deep/c.md", "# C")

	node, err := testResolver(t).Resolve(fspath.Abs("/src"), s)
	require.NoError(t, err)

	tree, err := node.(*DirNode).Tree(s)
	require.NoError(t, err)

	var locs []string
	for _, n := range tree {
		locs = append(locs, n.Location().String())
	}
	require.Equal(t, []string{"/src/a.md", "/src/sub", "/src/sub/b.md", "/src/sub/deep", "/src/sub/deep/c.md"}, locs)
}

func TestDirectory_ListingAndWrite(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/getting-started.md", "# GS")

	node, err := testResolver(t).Resolve(fspath.Abs("/src"), s)
	require.NoError(t, err)
	dir := node.(*DirNode)

	listing, err := dir.Listing(s)
	require.NoError(t, err)
	require.Contains(t, string(listing), "<title>Test Site</title>")
	require.Contains(t, string(listing), "Getting Started")

	require.NoError(t, dir.Write(s))
	require.Contains(t, readOutput(t, s, "/out/index.html"), "Getting Started")
}

func TestDirectory_LiteralIndexShortCircuitsListing(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/index.html", "<html><body>real index</body></html>")
	writeFile(t, s, "/src/other.md", "# Other")

	node, err := testResolver(t).Resolve(fspath.Abs("/src"), s)
	require.NoError(t, err)
	dir := node.(*DirNode)

	payload, err := dir.Serve(s)
	require.NoError(t, err)
	require.Contains(t, string(payload.Content), "real index")

	// Write steps aside: the literal index.html node writes itself.
	require.NoError(t, dir.Write(s))
	_, err = s.FS.Stat("/out/index.html")
	require.Error(t, err)
}

func TestFileNode_WriteCreatesIntermediateDirs(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/a/b/c.txt", "deep")

	node, err := testResolver(t).Resolve(fspath.Abs("/src/a/b/c.txt"), s)
	require.NoError(t, err)
	require.NoError(t, node.Write(s))
	require.Equal(t, "deep", readOutput(t, s, "/out/a/b/c.txt"))
}

func TestServe_MimeTypes(t *testing.T) {
	s := testSettings(t)
	writeFile(t, s, "/src/style.css", "body{}")
	writeFile(t, s, "/src/logo.svg", "<svg/>")

	res := testResolver(t)
	for path, wantMime := range map[string]string{
		"/src/style.css": "text/css; charset=utf-8",
		"/src/logo.svg":  "image/svg+xml",
	} {
		node, err := res.Resolve(fspath.Abs(path), s)
		require.NoError(t, err)
		payload, err := node.Serve(s)
		require.NoError(t, err)
		require.Equal(t, wantMime, payload.MimeType, fmt.Sprintf("mime for %s", path))
	}
}
