//go:build !windows

package serve

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReusePort is installed as a net.ListenConfig.Control hook when
// Server.ReusePort is set, so more than one single-threaded resolver
// process can bind the same listening address.
func controlReusePort(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
