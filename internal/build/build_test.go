package build

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/fspath"
	"github.com/jakeisnt/quine/internal/site"
	"github.com/jakeisnt/quine/internal/util/sets"
)

// stubNode lets the traversal tests control write results and dependency
// edges directly, without a filesystem.
type stubNode struct {
	loc      fspath.Path
	deps     []site.Node
	depsErr  error
	writeErr error
	writes   int
}

func (n *stubNode) Location() fspath.Path { return n.loc }
func (n *stubNode) DerivedFrom() site.Node {
	return nil
}
func (n *stubNode) Read(_ *config.Settings) ([]byte, error) { return nil, nil }
func (n *stubNode) Write(_ *config.Settings) error {
	n.writes++
	return n.writeErr
}
func (n *stubNode) Dependencies(_ *config.Settings) ([]site.Node, error) {
	return n.deps, n.depsErr
}
func (n *stubNode) Serve(_ *config.Settings) (site.Payload, error) {
	return site.Payload{}, nil
}

func stub(path string) *stubNode {
	return &stubNode{loc: fspath.Abs(path)}
}

func testSettings() *config.Settings {
	return &config.Settings{
		Site:   config.SiteConfig{Name: "Test Site"},
		Source: "/src",
		Target: "/out",
		FS:     memfs.New(),
	}
}

func TestBuild_CycleTerminates(t *testing.T) {
	a := stub("/src/a.html")
	b := stub("/src/b.html")
	a.deps = []site.Node{b}
	b.deps = []site.Node{a}

	builder := New(testSettings(), nil)
	visited := sets.New[string]()
	require.NoError(t, builder.Build(context.Background(), a, visited))

	require.Equal(t, 1, a.writes)
	require.Equal(t, 1, b.writes)
	require.Equal(t, 2, visited.Len())
}

func TestBuild_SharedDependencyWrittenOnce(t *testing.T) {
	shared := stub("/src/style.css")
	p1 := stub("/src/one.html")
	p2 := stub("/src/two.html")
	p1.deps = []site.Node{shared}
	p2.deps = []site.Node{shared}
	root := stub("/src/index.html")
	root.deps = []site.Node{p1, p2}

	builder := New(testSettings(), nil)
	require.NoError(t, builder.Build(context.Background(), root, sets.New[string]()))

	require.Equal(t, 1, shared.writes)
}

func TestBuild_SelfReferenceIsNoop(t *testing.T) {
	a := stub("/src/a.html")
	a.deps = []site.Node{a}

	builder := New(testSettings(), nil)
	require.NoError(t, builder.Build(context.Background(), a, sets.New[string]()))
	require.Equal(t, 1, a.writes)
}

func TestBuild_FailedDependencyDoesNotStopSiblings(t *testing.T) {
	ok1 := stub("/src/a.css")
	bad := stub("/src/b.css")
	bad.writeErr = errors.New("disk full")
	ok2 := stub("/src/c.css")
	root := stub("/src/index.html")
	root.deps = []site.Node{ok1, bad, ok2}

	builder := New(testSettings(), nil)
	visited := sets.New[string]()
	// The failure is contained at the parent's recursion site.
	require.NoError(t, builder.Build(context.Background(), root, visited))

	require.Equal(t, 1, ok1.writes)
	require.Equal(t, 1, ok2.writes)
	// The failed node stays visited: no retry within the run.
	require.True(t, visited.Has("/src/b.css"))
}

func TestBuild_RootWriteFailurePropagates(t *testing.T) {
	root := stub("/src/index.html")
	root.writeErr = errors.New("disk full")

	builder := New(testSettings(), nil)
	err := builder.Build(context.Background(), root, sets.New[string]())
	require.Error(t, err)
	require.Contains(t, err.Error(), "/src/index.html")
}

func TestBuild_DependencyEnumerationFailureMeansNoDeps(t *testing.T) {
	child := stub("/src/child.html")
	root := stub("/src/index.html")
	root.deps = []site.Node{child}
	root.depsErr = errors.New("parse failure")

	builder := New(testSettings(), nil)
	require.NoError(t, builder.Build(context.Background(), root, sets.New[string]()))
	require.Zero(t, child.writes)
}

func TestBuild_VisitedNodeSkippedEntirely(t *testing.T) {
	a := stub("/src/a.html")
	visited := sets.New("/src/a.html")

	builder := New(testSettings(), nil)
	require.NoError(t, builder.Build(context.Background(), a, visited))
	require.Zero(t, a.writes)
}

func TestSeedVisited(t *testing.T) {
	s := testSettings()
	s.Ignore = []string{"drafts"}
	visited := SeedVisited(s)

	require.True(t, visited.Has("/out"))
	require.True(t, visited.Has("/src/drafts"))
	require.True(t, visited.Has("/src/.git"))
	require.True(t, visited.Has("/src/node_modules"))
}

// Compile-target scenario: a root page referencing compiled forms whose only
// sources on disk are scss/ts. The output tree carries the compiled names and
// never the literal sources.
func TestBuild_CompileTargetScenario(t *testing.T) {
	s := testSettings()
	write := func(path, content string) {
		require.NoError(t, util.WriteFile(s.FS, path, []byte(content), 0o644))
	}
	write("/src/index.html", `<html><head>
<link rel="stylesheet" href="style.css">
<script src="app.js"></script>
</head><body></body></html>`)
	write("/src/style.scss", "$color: red;")
	write("/src/app.ts", "let n: number = 1")

	transforms := site.Transforms{
		Scss: func(src site.Node, s *config.Settings) ([]byte, error) {
			return []byte("css-out"), nil
		},
		TypeScript: func(src site.Node, s *config.Settings) ([]byte, error) {
			return []byte("js-out"), nil
		},
	}
	reg, err := site.DefaultRegistry(transforms)
	require.NoError(t, err)
	res := site.NewResolver(reg, nil)

	root, err := res.Resolve(fspath.Abs("/src/index.html"), s)
	require.NoError(t, err)
	require.NotNil(t, root)

	visited := sets.New(s.TargetPath().String())
	builder := New(s, nil)
	require.NoError(t, builder.Build(context.Background(), root, visited))

	for _, path := range []string{"/out/index.html", "/out/style.css", "/out/app.js"} {
		_, err := s.FS.Stat(path)
		require.NoError(t, err, path)
	}
	for _, path := range []string{"/out/style.scss", "/out/app.ts"} {
		_, err := s.FS.Stat(path)
		require.Error(t, err, path)
	}

	require.Equal(t, []string{"/out", "/src/app.js", "/src/index.html", "/src/style.css"},
		sets.SortedStrings(visited))

	data, err := util.ReadFile(s.FS, "/out/style.css")
	require.NoError(t, err)
	require.Equal(t, "css-out", string(data))
}

func TestRun_FullSiteFromSourceRoot(t *testing.T) {
	s := testSettings()
	write := func(path, content string) {
		require.NoError(t, util.WriteFile(s.FS, path, []byte(content), 0o644))
	}
	write("/src/index.html", `<html><body><a href="notes/first.md">first</a></body></html>`)
	write("/src/notes/first.md", "# First\n")
	write("/src/.git/config", "")
	require.NoError(t, s.FS.MkdirAll("/out", 0o755))

	reg, err := site.DefaultRegistry(site.Transforms{
		Markdown: func(src site.Node, s *config.Settings) ([]byte, error) {
			return []byte("<html>rendered</html>"), nil
		},
	})
	require.NoError(t, err)
	res := site.NewResolver(reg, nil)

	stats, err := Run(context.Background(), res, s, nil)
	require.NoError(t, err)
	require.NotEmpty(t, stats.BuildID)
	// /src, index.html, /src/notes, first.md.
	require.Equal(t, 4, stats.Written)

	// The root directory has a literal index, so no listing is generated
	// over it; the notes directory gets one.
	data, err := util.ReadFile(s.FS, "/out/index.html")
	require.NoError(t, err)
	require.Contains(t, string(data), "first.md")

	_, err = s.FS.Stat("/out/notes/index.html")
	require.NoError(t, err)
	_, err = s.FS.Stat("/out/notes/first.md")
	require.NoError(t, err)

	// Version-control internals never cross into the target.
	_, err = s.FS.Stat("/out/.git")
	require.Error(t, err)
}

func TestRun_MissingSourceRootIsFatal(t *testing.T) {
	s := testSettings()
	reg, err := site.DefaultRegistry(site.Transforms{})
	require.NoError(t, err)

	_, err = Run(context.Background(), site.NewResolver(reg, nil), s, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}
