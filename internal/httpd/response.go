package httpd

import (
	"fmt"
	"time"
)

// dateLayout produces the exact "%a, %d %b %Y %H:%M:%S %Z" form in GMT
// used by every Date and Last-Modified header.
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

func formatHTTPDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func buildGetResponseHeader(minor int, date, signature, lastModified string, contentLength int, contentType string) string {
	return fmt.Sprintf(
		"HTTP/1.%d 200 OK\r\nDate: %s\r\nServer: %s\r\nLast-Modified: %s\r\nContent-Length: %d\r\nContent-Type: %s\r\n\r\n",
		minor, date, signature, lastModified, contentLength, contentType)
}

func buildOptionsResponseHeader(minor int, date, signature string) string {
	return fmt.Sprintf(
		"HTTP/1.%d 200 OK\r\nDate: %s\r\nConnection: close\r\nServer: %s\r\nContent-Length: 0\r\nAllow: GET, POST, OPTIONS\r\n\r\n",
		minor, date, signature)
}

func buildErrorResponseHeader(kind ErrorKind, date, signature string) string {
	return fmt.Sprintf(
		"HTTP/1.1 %s\r\nDate: %s\r\nConnection: close\r\nServer: %s\r\nContent-Length: 0\r\nContent-Type:text/html\r\n\r\n",
		kind.statusLine(), date, signature)
}
