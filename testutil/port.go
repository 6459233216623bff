package testutil

import (
	"net"
	"sync"
	"testing"
)

var (
	handedOut = make(map[int]struct{})
	portsMu   sync.Mutex
)

// AllocateUniquePort asks the kernel for a free loopback port and never hands
// the same port to two tests of one process.
func AllocateUniquePort(t *testing.T) int {
	portsMu.Lock()
	defer portsMu.Unlock()

	for attempt := 0; attempt < 10; attempt++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			continue
		}
		port := l.Addr().(*net.TCPAddr).Port
		_ = l.Close()

		if _, taken := handedOut[port]; taken {
			continue
		}
		handedOut[port] = struct{}{}

		return port
	}

	t.Fatalf("failed to allocate a free loopback port")

	return 0
}
