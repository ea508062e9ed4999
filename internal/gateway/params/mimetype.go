package params

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

const DefaultMIMEType = "image/png"

var extensionMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// DetectMIMEType identifies an input image from its content, falling back to
// the file extension and finally to PNG.
func DetectMIMEType(path string, data []byte) string {
	if len(data) > 0 && filetype.IsImage(data) {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			return kind.MIME.Value
		}
	}
	if mt, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return DefaultMIMEType
}
