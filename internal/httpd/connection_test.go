package httpd

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeCGI struct {
	output []byte
	err    error
}

func (f fakeCGI) Run(ctx context.Context, interpreter, scriptPath string, args []string) ([]byte, error) {
	return f.output, f.err
}

func newTestConfig(t *testing.T, root string, cgi CGIRunner) HandlerConfig {
	t.Helper()
	return HandlerConfig{
		ServerRoot:      root,
		ServerSignature: "originhttpd/1.0",
		ReceiveTimeout:  80 * time.Millisecond,
		CGI:             cgi,
		CGITimeout:      time.Second,
	}
}

func serveOnce(t *testing.T, cfg HandlerConfig, request string) string {
	t.Helper()
	client, server := net.Pipe()

	done := make(chan struct{})
	go func() {
		Handle(server, cfg)
		close(done)
	}()

	go func() {
		client.Write([]byte(request))
	}()

	reader := bufio.NewReader(client)
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	client.Close()
	<-done
	return sb.String()
}

func TestHandle_StaticGET(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("unexpected status line in: %q", resp)
	}
	if !strings.Contains(resp, "Content-Length: 5") {
		t.Errorf("expected Content-Length: 5, got: %q", resp)
	}
	if !strings.Contains(resp, "Content-Type: text/html") {
		t.Errorf("expected text/html content type, got: %q", resp)
	}
	if !strings.HasSuffix(resp, "hello") {
		t.Errorf("expected body hello, got: %q", resp)
	}
}

func TestHandle_MissingFile(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "GET /nope HTTP/1.1\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 404 Not Found") {
		t.Errorf("expected 404, got: %q", resp)
	}
	if !strings.Contains(resp, "Content-Length: 0") {
		t.Errorf("expected zero-length body, got: %q", resp)
	}
}

func TestHandle_UnknownMethod(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "DELETE / HTTP/1.1\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 501 Not Implemented") {
		t.Errorf("expected 501, got: %q", resp)
	}
}

func TestHandle_Options(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "OPTIONS * HTTP/1.1\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("expected 200, got: %q", resp)
	}
	if !strings.Contains(resp, "Allow: GET, POST, OPTIONS") {
		t.Errorf("expected Allow header, got: %q", resp)
	}
	if !strings.Contains(resp, "Content-Length: 0") {
		t.Errorf("expected zero-length body, got: %q", resp)
	}
}

func TestHandle_GetWithQueryAndScript(t *testing.T) {
	root := t.TempDir()
	scriptPath := filepath.Join(root, "x.py")
	if err := os.WriteFile(scriptPath, []byte("print(42)"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig(t, root, fakeCGI{output: []byte("42")})
	resp := serveOnce(t, cfg, "GET /x.py?a=1 HTTP/1.1\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("expected 200, got: %q", resp)
	}
	if !strings.Contains(resp, "Content-Type: text/html") {
		t.Errorf("expected text/html content type, got: %q", resp)
	}
	if !strings.HasSuffix(resp, "42") {
		t.Errorf("expected body to end with 42, got: %q", resp)
	}
}

func TestHandle_Malformed(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "NOTAVERB\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request") {
		t.Errorf("expected 400, got: %q", resp)
	}
}

func TestHandle_GetQueryWithoutScriptExtensionIsBadRequest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "plain.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "GET /plain.txt?a=1 HTTP/1.1\r\n\r\n")

	if !strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request") {
		t.Errorf("expected 400, got: %q", resp)
	}
}

func TestHandle_EmptyFileYieldsZeroContentLength(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "empty.txt"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig(t, root, fakeCGI{})
	resp := serveOnce(t, cfg, "GET /empty.txt HTTP/1.1\r\n\r\n")

	if !strings.Contains(resp, "Content-Length: 0") {
		t.Errorf("expected Content-Length: 0 for empty file, got: %q", resp)
	}
}

func TestHandle_KeepAliveServesSubsequentRequestsOnSameConnection(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("A"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig(t, root, fakeCGI{})
	client, server := net.Pipe()

	done := make(chan struct{})
	go func() {
		Handle(server, cfg)
		close(done)
	}()

	// Bytes that follow a header block in the same read become that
	// request's body, so the second request is written in a separate
	// write, after the first one has been read.
	go func() {
		client.Write([]byte("GET /a.txt HTTP/1.1\r\n\r\n"))
		time.Sleep(20 * time.Millisecond)
		client.Write([]byte("GET /a.txt HTTP/1.1\r\n\r\n"))
	}()

	reader := bufio.NewReader(client)
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	client.Close()
	<-done
	resp := sb.String()

	if n := strings.Count(resp, "HTTP/1.1 200 OK"); n != 2 {
		t.Errorf("expected 2 responses on one connection, got %d in: %q", n, resp)
	}
}
