// Package httpd implements the per-connection HTTP/1.1 state machine:
// incremental request parsing, method dispatch, static-file and CGI
// response construction, and the keep-alive loop that drives repeated
// request/response cycles over one accepted socket.
package httpd

import (
	"net"
	"time"

	"github.com/coldforge/originhttpd/pkg/logger"
)

// HandlerConfig carries the values borrowed from server startup that
// every connection needs: the document root and server signature are
// immutable for the process's lifetime, the timeouts bound how long a
// worker can be held by one client.
type HandlerConfig struct {
	ServerRoot      string
	ServerSignature string
	ReceiveTimeout  time.Duration
	CGI             CGIRunner
	CGITimeout      time.Duration
}

// Handle runs the connection's state machine until the client closes
// the connection, a parse fails, or a handler reports a non-OK
// result. It always closes conn before returning. There is no
// inspection of Connection: close — only recv EOF/timeout/error or a
// handler error ends the keep-alive loop, matching the reference
// server's http() loop.
func Handle(conn net.Conn, cfg HandlerConfig) {
	defer conn.Close()

	for {
		if cfg.ReceiveTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(cfg.ReceiveTimeout)); err != nil {
				return
			}
		}

		req, outcome := ReadRequest(conn)
		switch outcome {
		case ReadConnectionClosed:
			return
		case ReadMalformed:
			writeErrorResponse(conn, BadRequest, cfg.ServerSignature)
			return
		}

		kind := dispatch(conn, req, cfg)
		if kind != OK {
			logger.Debug("%s %s -> %s", req.Method, req.Path, kind.statusLine())
			writeErrorResponse(conn, kind, cfg.ServerSignature)
			return
		}
	}
}

func dispatch(conn net.Conn, req Request, cfg HandlerConfig) ErrorKind {
	switch req.Method {
	case "GET":
		return handleGet(conn, req, cfg)
	case "POST":
		return handlePost(conn, req, cfg)
	case "OPTIONS":
		return handleOptions(conn, req, cfg)
	default:
		return NotImplemented
	}
}

func writeErrorResponse(conn net.Conn, kind ErrorKind, signature string) {
	header := buildErrorResponseHeader(kind, formatHTTPDate(time.Now()), signature)
	conn.Write([]byte(header))
	recordResponse(kind)
}
