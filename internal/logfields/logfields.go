package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyParent     = "parent"
	KeyTarget     = "target"
	KeyExtension  = "extension"
	KeySource     = "source"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Parent(p string) slog.Attr        { return slog.String(KeyParent, p) }
func Target(p string) slog.Attr        { return slog.String(KeyTarget, p) }
func Extension(ext string) slog.Attr   { return slog.String(KeyExtension, ext) }
func Source(p string) slog.Attr        { return slog.String(KeySource, p) }
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
