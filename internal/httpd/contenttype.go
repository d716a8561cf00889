package httpd

import "strings"

// contentTypes is the exact extension table from the reference
// implementation, with the mpeg entry corrected: the source embeds a
// literal "Content-Type: " prefix inside the value for mpg/mpeg/mkv in
// older revisions, which would double up the header name when
// substituted into the response template. Here the value is always a
// plain media type.
var contentTypes = map[string]string{
	"txt":  "text/plain",
	"htm":  "text/html",
	"html": "text/html",
	"py":   "text/html",
	"php":  "text/html",
	"gif":  "image/gif",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"ico":  "image/jpeg",
	"mpg":  "video/mpeg",
	"mpeg": "video/mpeg",
	"mkv":  "video/mpeg",
	"doc":  "application/msword",
	"docx": "application/msword",
	"pdf":  "application/pdf",
}

// contentTypeFor returns the content type for path's extension. The
// second return is false when the extension is unmapped, which the
// caller reports as UnsupportedMediaType.
func contentTypeFor(path string) (string, bool) {
	ct, ok := contentTypes[extensionOf(path)]
	return ct, ok
}

func extensionOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	return path[idx+1:]
}

// isScriptPath reports whether path's extension identifies a CGI
// script the server knows how to invoke.
func isScriptPath(path string) (interpreter string, ok bool) {
	switch extensionOf(path) {
	case "py":
		return "python3", true
	case "php":
		return "php", true
	default:
		return "", false
	}
}
