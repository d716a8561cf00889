package httpd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coldforge/originhttpd/internal/metrics"
)

// cgiOutputCap bounds the size of a captured CGI response body. The
// reference implementation reads a single fread up to this many bytes
// from the interpreter's pipe; longer output is silently truncated,
// and that truncation is preserved here rather than papered over.
const cgiOutputCap = 3072

// CGIRunner executes an interpreter against a script path, returning
// its combined stdout+stderr capped at cgiOutputCap bytes.
type CGIRunner interface {
	Run(ctx context.Context, interpreter, scriptPath string, args []string) ([]byte, error)
}

func splitQuery(path string) (resourcePath, query string, hasQuery bool) {
	idx := strings.LastIndexByte(path, '?')
	if idx < 0 {
		return path, "", false
	}
	return path[:idx], path[idx+1:], true
}

func resolvePath(documentRoot, resourcePath string) string {
	return filepath.Join(documentRoot, resourcePath)
}

// handleGet implements §4.3.2: dispatch to a CGI interpreter when a
// query string is present and the path names a script, otherwise
// serve the resource as a static file.
func handleGet(conn io.Writer, req Request, cfg HandlerConfig) ErrorKind {
	resourcePath, query, hasQuery := splitQuery(req.Path)
	fullPath := resolvePath(cfg.ServerRoot, resourcePath)

	if hasQuery {
		interpreter, ok := isScriptPath(fullPath)
		if !ok {
			return BadRequest
		}
		return runCGIAndRespond(conn, req, cfg, fullPath, interpreter, splitArgs(query))
	}

	return serveStaticFile(conn, req, cfg, fullPath)
}

// handlePost implements §4.3.3: CGI is mandatory; the request body (if
// any) becomes the interpreter's sole extra argument.
func handlePost(conn io.Writer, req Request, cfg HandlerConfig) ErrorKind {
	resourcePath, _, _ := splitQuery(req.Path)
	fullPath := resolvePath(cfg.ServerRoot, resourcePath)

	interpreter, ok := isScriptPath(fullPath)
	if !ok {
		return BadRequest
	}

	var args []string
	if len(req.Body) > 0 {
		args = []string{string(req.Body)}
	}

	return runCGIAndRespond(conn, req, cfg, fullPath, interpreter, args)
}

// handleOptions implements §4.3.4.
func handleOptions(conn io.Writer, req Request, cfg HandlerConfig) ErrorKind {
	header := buildOptionsResponseHeader(req.Minor, formatHTTPDate(time.Now()), cfg.ServerSignature)
	if _, err := io.WriteString(conn, header); err != nil {
		return InternalServerError
	}
	recordResponse(OK)
	return OK
}

func splitArgs(query string) []string {
	if query == "" {
		return nil
	}
	return []string{query}
}

func runCGIAndRespond(conn io.Writer, req Request, cfg HandlerConfig, scriptPath, interpreter string, args []string) ErrorKind {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.CGITimeout)
	defer cancel()

	body, err := cfg.CGI.Run(ctx, interpreter, scriptPath, args)
	if err != nil {
		// A nil error from CGIRunner.Run always carries the script's
		// captured output, even for a non-zero exit; an error here
		// means the interpreter itself could not be started.
		metrics.CgiInvocationsTotal.WithLabelValues("error").Inc()
		return NotFound
	}
	if len(body) > cgiOutputCap {
		body = body[:cgiOutputCap]
	}
	metrics.CgiInvocationsTotal.WithLabelValues("ok").Inc()

	contentType, ok := contentTypeFor(scriptPath)
	if !ok {
		return UnsupportedMediaType
	}

	lastModified := formatHTTPDate(time.Now())
	if info, statErr := os.Stat(scriptPath); statErr == nil {
		lastModified = formatHTTPDate(info.ModTime())
	}

	header := buildGetResponseHeader(req.Minor, formatHTTPDate(time.Now()), cfg.ServerSignature, lastModified, len(body), contentType)
	if err := writeAll(conn, header, body); err != nil {
		return InternalServerError
	}
	recordResponse(OK)
	return OK
}

func serveStaticFile(conn io.Writer, req Request, cfg HandlerConfig, fullPath string) ErrorKind {
	f, err := os.Open(fullPath)
	if err != nil {
		return NotFound
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return InternalServerError
	}

	contentType, ok := contentTypeFor(fullPath)
	if !ok {
		return UnsupportedMediaType
	}

	body, err := io.ReadAll(f)
	if err != nil {
		return InternalServerError
	}

	header := buildGetResponseHeader(
		req.Minor,
		formatHTTPDate(time.Now()),
		cfg.ServerSignature,
		formatHTTPDate(info.ModTime()),
		len(body),
		contentType,
	)

	if err := writeAll(conn, header, body); err != nil {
		return InternalServerError
	}
	recordResponse(OK)
	return OK
}

func writeAll(w io.Writer, header string, body []byte) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

func recordResponse(kind ErrorKind) {
	metrics.ResponsesTotal.WithLabelValues(kind.statusCode()).Inc()
}
