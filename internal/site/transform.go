package site

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/jakeisnt/quine/internal/config"
	"github.com/jakeisnt/quine/internal/markdown"
)

// Transforms is the set of compile transforms the registry hands to source
// variants. The host application supplies them; the defaults shell out to
// the conventional compilers. Tests inject function values instead.
type Transforms struct {
	Scss       Transform
	TypeScript Transform
	Markdown   Transform
}

// DefaultTransforms compiles scss via the sass CLI, ts via esbuild, and
// markdown through goldmark wrapped in the site's page shell.
func DefaultTransforms() Transforms {
	return Transforms{
		Scss:       execTransform("sass", "--no-source-map"),
		TypeScript: execTransform("esbuild"),
		Markdown:   markdownPageTransform,
	}
}

// execTransform runs an external compiler against the node's on-disk
// location and captures stdout as the derived content.
func execTransform(bin string, args ...string) Transform {
	return func(src Node, _ *config.Settings) ([]byte, error) {
		cmd := exec.Command(bin, append(args, src.Location().String())...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("%s failed for %s: %w: %s", bin, src.Location(), err, stderr.String())
		}
		return stdout.Bytes(), nil
	}
}

// markdownPageTransform renders the markdown body and wraps it in a minimal
// page shell carrying the configured site name and base URL.
func markdownPageTransform(src Node, s *config.Settings) ([]byte, error) {
	body, err := src.Read(s)
	if err != nil {
		return nil, err
	}
	rendered, err := markdown.Render(body)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", src.Location(), err)
	}

	title := titleize(src.Location().WithExt("").Name())
	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	if s.Site.URL != "" {
		fmt.Fprintf(&buf, "<base href=%q>\n", s.Site.URL)
	}
	if s.Site.Name != "" {
		fmt.Fprintf(&buf, "<title>%s · %s</title>\n", title, s.Site.Name)
	} else {
		fmt.Fprintf(&buf, "<title>%s</title>\n", title)
	}
	buf.WriteString("</head>\n<body>\n")
	buf.Write(rendered)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
