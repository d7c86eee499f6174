package normalisers

import (
	"mime"
	"path/filepath"
	"strings"
)

// Extensions the stdlib mime table does not cover.
var extraMediaTypes = map[string]string{
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".eml":      "message/rfc822",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".csv":      "text/csv",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
}

// MediaTypeForPath resolves the media type from the file extension.
// Unknown extensions resolve to application/octet-stream.
func MediaTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := extraMediaTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return strings.ToLower(mt)
	}
	return "application/octet-stream"
}
