// Package fspath provides an immutable, always-absolute path value used by
// every layer of the site builder. Normalizing once at construction means the
// resolver, builder and visited-set can compare paths as plain strings.
package fspath

import (
	"path/filepath"
	"strings"
)

// Path is an absolute, cleaned filesystem path. The zero value is invalid;
// construct through New or the derived operations.
type Path struct {
	raw string
}

// New returns the absolute, cleaned form of p. Relative input is resolved
// against base (which must itself be absolute).
func New(base, p string) Path {
	if filepath.IsAbs(p) {
		return Path{raw: filepath.Clean(p)}
	}
	return Path{raw: filepath.Join(base, p)}
}

// Abs wraps a path that is already absolute.
func Abs(p string) Path {
	return Path{raw: filepath.Clean(p)}
}

// String returns the underlying absolute path.
func (p Path) String() string { return p.raw }

// IsZero reports whether the path was never constructed.
func (p Path) IsZero() bool { return p.raw == "" }

// Join appends elements to the path.
func (p Path) Join(elem ...string) Path {
	return Path{raw: filepath.Join(append([]string{p.raw}, elem...)...)}
}

// Dir returns the parent directory.
func (p Path) Dir() Path { return Path{raw: filepath.Dir(p.raw)} }

// Name returns the final path element.
func (p Path) Name() string { return filepath.Base(p.raw) }

// Ext returns the extension without the leading dot, lowercased.
// A path with no dot in its final element yields "".
func (p Path) Ext() string {
	ext := filepath.Ext(p.raw)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// WithExt returns the sibling path with the extension replaced. An empty
// current extension appends ext instead.
func (p Path) WithExt(ext string) Path {
	base := strings.TrimSuffix(p.raw, filepath.Ext(p.raw))
	if ext == "" {
		return Path{raw: base}
	}
	return Path{raw: base + "." + ext}
}

// Rel returns p expressed relative to base. Returns the full path when p is
// not under base.
func (p Path) Rel(base Path) string {
	rel, err := filepath.Rel(base.raw, p.raw)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p.raw
	}
	return rel
}

// Under reports whether p equals base or sits inside it.
func (p Path) Under(base Path) bool {
	if p.raw == base.raw {
		return true
	}
	return strings.HasPrefix(p.raw, base.raw+string(filepath.Separator))
}
