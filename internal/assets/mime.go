package assets

import (
	"path/filepath"
	"strings"

	"resumechat/internal/core"
)

// builtinTypes is the fixed extension table; keys are lower case
var builtinTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".pdf":  "application/pdf",
}

// ContentType maps a file path to its content type, case-insensitively on the extension
func (r *Resolver) ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return core.ContentTypeOctetStream
	}
	if contentType, ok := r.mimeTypes[ext]; ok {
		return contentType
	}
	if contentType, ok := builtinTypes[ext]; ok {
		return contentType
	}
	return core.ContentTypeOctetStream
}
