/*
Package native defines the boundary between package uds and the operating system.

Everything uds does to a socket goes through a Provider: creating, binding, listening,
accepting, connecting, reading, writing, configuring timeouts, half-closing, closing and
unlinking. The Provider returned by Load() talks to the kernel through golang.org/x/sys/unix.
Tests substitute the programmable Provider in the fake sub-package so that the lifecycle rules
in uds can be checked without an OS socket.

Load() should be called once by the process entry point:

	p, err := native.Load()
	if err != nil {
		glog.Exitf("unix domain sockets are unavailable: %s", err)
	}

Nothing is loaded in an init() function, so a platform without Unix domain sockets is reported
where it can be acted on instead of surfacing on the first socket call.
*/
package native

import (
	"fmt"
	"time"
)

// Mode is the kind of socket. The numeric values are part of the contract with native
// implementations and must not change.
type Mode int

const (
	// Datagram is a connectionless socket (SOCK_DGRAM). Data only flows from client to server.
	Datagram Mode = 0
	// Stream is a connection oriented socket (SOCK_STREAM). Data flows in both directions.
	Stream Mode = 1
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Datagram:
		return "datagram"
	case Stream:
		return "stream"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid returns true if m is Datagram or Stream.
func (m Mode) Valid() bool {
	return m == Datagram || m == Stream
}

// ParseMode converts "stream" or "datagram" (also "dgram") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "stream":
		return Stream, nil
	case "datagram", "dgram":
		return Datagram, nil
	}
	return 0, fmt.Errorf("unknown socket mode %q, must be stream or datagram", s)
}

// Handle is an open native socket descriptor.
type Handle int

// InvalidHandle is returned alongside an error by every Provider call that produces a Handle.
const InvalidHandle Handle = -1

// Provider performs the primitive socket operations. Every method blocks the calling
// goroutine until the kernel returns. A non-nil error is the failure signal; implementations
// never retry on the caller's behalf.
type Provider interface {
	// Create binds a socket at path. For Stream it also listens with no backlog and blocks
	// until the first peer connects, returning the handle for that peer. For Datagram it
	// returns the bound handle. Any existing file at path is removed first.
	Create(path string, mode Mode) (Handle, error)
	// Listen binds a socket at path and, for Stream, listens with backlog. Any existing file
	// at path is removed first.
	Listen(path string, mode Mode, backlog int) (Handle, error)
	// Accept blocks until a peer connects to the listening handle h.
	Accept(h Handle, mode Mode) (Handle, error)
	// Open connects a new socket to path.
	Open(path string, mode Mode) (Handle, error)
	// Read reads up to len(b) bytes. 0 bytes with a nil error is end-of-stream.
	Read(h Handle, b []byte) (int, error)
	// Write writes b and returns the number of bytes the kernel accepted.
	Write(h Handle, b []byte) (int, error)
	// Timeout sets the blocking I/O timeout of h. 0 blocks forever.
	Timeout(h Handle, d time.Duration) error
	// Close releases h.
	Close(h Handle) error
	// ShutdownRead half-closes the read side of h.
	ShutdownRead(h Handle) error
	// ShutdownWrite half-closes the write side of h.
	ShutdownWrite(h Handle) error
	// Unlink removes the socket file at path.
	Unlink(path string) error
}

// PeerCred is the identity of the process on the other end of a connected socket.
type PeerCred struct {
	PID, UID, GID int
}

// CredProvider is implemented by Providers that can report peer credentials.
type CredProvider interface {
	PeerCred(h Handle) (PeerCred, error)
}
