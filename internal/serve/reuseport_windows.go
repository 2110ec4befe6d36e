//go:build windows

package serve

import "syscall"

// controlReusePort is a no-op on Windows, which has no SO_REUSEPORT
// equivalent exposed the same way; Server.ReusePort is simply ignored
// there.
func controlReusePort(network, address string, c syscall.RawConn) error {
	return nil
}
