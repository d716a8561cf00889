// Package netutil sets up the raw TCP listener the origin server
// accepts connections on. It mirrors socket_init's getaddrinfo/bind/
// listen sequence: an IPv4 passive listener with SO_REUSEADDR set
// before bind. The accept backlog is the Go runtime's default, not a
// configured value.
package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Listen opens a TCP listener on port, setting SO_REUSEADDR the way
// socket_init does via setsockopt before bind. The backlog argument is
// not applied: the listen queue length is the one the Go runtime passes
// to listen(2) (the kernel's somaxconn on Linux).
func Listen(port int, backlog int) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	ln, err := lc.Listen(context.Background(), "tcp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}

	return ln, nil
}

// AcceptOne accepts a single connection from ln and applies the
// receive timeout the connection handler enforces while reading a
// request, matching the reference server's use of a read timeout to
// bound how long a client may hold a worker thread idle.
func AcceptOne(ln net.Listener, receiveTimeout time.Duration) (net.Conn, error) {
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}

	if receiveTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(receiveTimeout)); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	return conn, nil
}
