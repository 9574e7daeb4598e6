//go:build linux

package lewei

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// tuneConn disables Nagle's algorithm and enables TCP keepalive on the
// command/stream sockets. lewei_cam exchanges small, latency-sensitive
// messages (heartbeats, single-record RPCs); batching them behind Nagle's
// algorithm adds tens of milliseconds for no benefit.
func tuneConn(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	raw, err := tcp.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	})
	_ = tcp.SetKeepAlivePeriod(30 * time.Second)
}
