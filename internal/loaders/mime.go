package loaders

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/repochat/internal/normalisers/docx"
)

// fallbackMIMETypes covers extensions the platform table may not know or
// may map inconsistently.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".json":     "application/json",
	".xml":      "application/xml",
	".pdf":      "application/pdf",
	".docx":     docx.MIMEType,
}

// detectMIMEType returns the MIME type for a file name without parameters.
// Files without an extension are treated as plain text.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := fallbackMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}
