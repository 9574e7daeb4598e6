//go:build !linux

package lewei

import "net"

// tuneConn outside Linux only sets TCP_NODELAY, which is already Go's
// default for TCP connections; keepalive tuning is left to the OS and Go
// defaults.
func tuneConn(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
}
