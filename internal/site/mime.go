package site

import "mime"

// mimeOverrides covers extensions the stdlib table misses or where we want a
// stable answer independent of the host's mime.types.
var mimeOverrides = map[string]string{
	"html":  "text/html; charset=utf-8",
	"css":   "text/css; charset=utf-8",
	"js":    "text/javascript; charset=utf-8",
	"md":    "text/markdown; charset=utf-8",
	"scss":  "text/x-scss; charset=utf-8",
	"ts":    "text/x-typescript; charset=utf-8",
	"txt":   "text/plain; charset=utf-8",
	"svg":   "image/svg+xml",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

func mimeFor(ext string) string {
	if m, ok := mimeOverrides[ext]; ok {
		return m
	}
	if ext != "" {
		if m := mime.TypeByExtension("." + ext); m != "" {
			return m
		}
	}
	return "application/octet-stream"
}
