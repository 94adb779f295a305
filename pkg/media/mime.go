package media

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// sniffLen is how many header bytes filetype needs to recognise every
// matcher it ships.
const sniffLen = 4100

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".pdf":  "application/pdf",
}

// DetectMIME returns the MIME type for a payload. Content sniffing wins over
// the extension; http.DetectContentType is the last resort.
func DetectMIME(name string, head []byte) string {
	if len(head) > 0 {
		if kind, _ := filetype.Match(head); kind != filetype.Unknown {
			return kind.MIME.Value
		}
	}
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	if len(head) == 0 {
		return ""
	}
	t := http.DetectContentType(head)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// SanitizeFilename removes path components and traversal sequences so the
// name is safe to use for local storage.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.ReplaceAll(base, "..", "")
	base = strings.ReplaceAll(base, "/", "_")
	base = strings.ReplaceAll(base, "\\", "_")
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}
