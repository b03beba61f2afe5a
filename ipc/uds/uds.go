/*
Package uds provides servers and clients for Unix Domain Sockets, in both Stream (bidirectional)
and Datagram (unidirectional) flavors.

Unlike the "net" package, every call here is a plain blocking system call on the calling
goroutine. There is no poller, no deadlines that reset themselves and no buffering. A Read()
returns whatever a single read(2) returned and a Write() either writes everything or fails. If
you want framing, retries or pooling, build them on top.

All system calls go through a native.Provider. Get one with native.Load() when your program
starts and pass it to the constructors:

	p, err := native.Load()
	if err != nil {
		// Unix domain sockets are not available here.
	}

	// Server side, accepting as many clients as you like.
	l, err := uds.ListenStream(p, "/tmp/my.sock", 5, uds.FileMode(0770))
	if err != nil {
		// Do something
	}
	defer l.Unlink()
	defer l.Close()

	for {
		conn, err := l.Accept()
		if err != nil {
			// The listener is still usable.
			continue
		}
		go handle(conn) // conn now belongs to this goroutine.
	}

	// Client side.
	conn, err := uds.DialStream(p, "/tmp/my.sock")

Mode and role

Which directions a socket can carry is decided when it is constructed:

	Role                 Stream        Datagram
	client (Dial)        read, write   write
	server (Create)      read, write   read
	accepted (Accept)    read, write   n/a
	listener (Listen)    none          read

The typed constructors (DialStream, DialDatagram, CreateStream, CreateDatagram, ListenStream)
return types that only have the methods their direction allows, so misuse will not compile.
Dial, Create and Listen return a *Socket whose Reader() and Writer() check at runtime and
return ErrUnsupported.

Concurrency

Nothing in this package starts a goroutine. A Socket's Reader and Writer may be used from two
different goroutines, but a single Reader or Writer must not be used concurrently. Closing a
Socket while another goroutine is blocked in a call on it is undefined; use SetTimeout() to
bound blocking calls instead.

Unix/Linux Note:
	Socket paths may have a length limit that is different than the normal
	filesystem. On OSX, you can receive "bind: invalid argument" when the name is too long.

	On Linux there seems to be an 108 character for path names. https://github.com/golang/go/issues/6895 .
	I have set this as the limit for all sockets so I don't have to figure out the limit on
	every type of system and interpret non-sensical errors (invalid argument doesn't mean all that much).
*/
package uds

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/golang/glog"
	"github.com/johnsiilver/suds/ipc/uds/native"
)

// MaxPathLen is the exclusive upper bound on the length of a socket path.
const MaxPathLen = 108

// Mode is the kind of socket, Stream or Datagram.
type Mode = native.Mode

const (
	// Datagram sockets are unidirectional, clients write and servers read.
	Datagram = native.Datagram
	// Stream sockets are bidirectional.
	Stream = native.Stream
)

// Provider performs the system calls for a Socket. See native.Load().
type Provider = native.Provider

// Role is how a Socket came to exist.
type Role int

const (
	// RoleClient is a Socket made by Dial.
	RoleClient Role = iota
	// RoleServer is a Socket made by Create.
	RoleServer
	// RoleListener is the Socket inside a Listener.
	RoleListener
	// RoleAccepted is a Socket made by Listener.Accept.
	RoleAccepted
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	case RoleListener:
		return "listener"
	case RoleAccepted:
		return "accepted"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ownsPath indicates the role created the socket file and is responsible for removing it.
func (r Role) ownsPath() bool {
	return r == RoleServer || r == RoleListener
}

// capabilities returns the directions a socket of mode and role may carry.
func capabilities(mode Mode, role Role) (readable, writable bool) {
	switch role {
	case RoleClient:
		return mode == Stream, true
	case RoleServer, RoleAccepted:
		return true, mode == Stream
	case RoleListener:
		return mode == Datagram, false
	}
	return false, false
}

// Socket is one open Unix domain socket. The directions it supports are fixed when it is
// constructed, see the package documentation.
type Socket struct {
	p      Provider
	handle native.Handle
	path   string
	mode   Mode
	role   Role

	reader *Reader
	writer *Writer

	closeOnce sync.Once
	closed    atomic.Bool

	mu       sync.Mutex
	unlinked bool
}

func newSocket(p Provider, h native.Handle, path string, mode Mode, role Role) *Socket {
	s := &Socket{p: p, handle: h, path: path, mode: mode, role: role}

	readable, writable := capabilities(mode, role)
	if readable {
		s.reader = &Reader{s: s}
	}
	if writable {
		s.writer = &Writer{s: s}
	}
	return s
}

// String implements fmt.Stringer.
func (s *Socket) String() string {
	if s.path == "" {
		return fmt.Sprintf("%s %s socket(handle %d)", s.role, s.mode, s.handle)
	}
	return fmt.Sprintf("%s %s socket(%s)", s.role, s.mode, s.path)
}

// Mode returns the Socket's mode.
func (s *Socket) Mode() Mode {
	return s.mode
}

// Role returns how the Socket was constructed.
func (s *Socket) Role() Role {
	return s.role
}

// Path returns the filesystem path the Socket is bound or connected to. Accepted sockets
// have no path.
func (s *Socket) Path() string {
	return s.path
}

// Handle returns the native handle. It is only valid until Close() is called.
func (s *Socket) Handle() native.Handle {
	return s.handle
}

// Closed returns true once Close() has been called.
func (s *Socket) Closed() bool {
	return s.closed.Load()
}

// Reader returns the Socket's Reader. ErrUnsupported is returned if the Socket's mode and
// role do not allow reading.
func (s *Socket) Reader() (*Reader, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: %s cannot be read from", ErrUnsupported, s)
	}
	return s.reader, nil
}

// Writer returns the Socket's Writer. ErrUnsupported is returned if the Socket's mode and
// role do not allow writing.
func (s *Socket) Writer() (*Writer, error) {
	if s.writer == nil {
		if s.mode == Datagram {
			return nil, fmt.Errorf("%w: %s cannot be written to, datagram sockets are unidirectional", ErrUnsupported, s)
		}
		return nil, fmt.Errorf("%w: %s cannot be written to, use Accept() to get a socket for each connection", ErrUnsupported, s)
	}
	return s.writer, nil
}

// SetTimeout bounds how long a blocking read, write or accept on the Socket may wait before
// failing. 0 blocks forever.
func (s *Socket) SetTimeout(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: timeout %v is negative", ErrInvalidArgument, d)
	}
	if s.Closed() {
		return errClosed("configure timeout on", s)
	}
	if err := s.p.Timeout(s.handle, d); err != nil {
		return fmt.Errorf("%w: unable to configure socket timeout on %s: %w", ErrIO, s, err)
	}
	return nil
}

// Close closes the Socket's Writer, then its Reader, then releases the native handle. Each
// step runs even if an earlier one failed. Failures are logged, not returned, and calls after
// the first do nothing.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		if s.writer != nil {
			s.writer.shutdown()
		}
		if s.reader != nil {
			s.reader.shutdown()
		}
		s.closed.Store(true)

		if err := s.p.Close(s.handle); err != nil {
			log.Warningf("uds: problem releasing %s: %s", s, err)
			return
		}
		log.V(2).Infof("uds: closed %s", s)
	})
	return nil
}

// Unlink removes the socket file. It is important for the server to do this before the
// program exits, otherwise the file lingers. Unlink does nothing for client and accepted
// sockets, or if the file is already gone.
func (s *Socket) Unlink() error {
	if s.path == "" || !s.role.ownsPath() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unlinked {
		return nil
	}
	if err := s.p.Unlink(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.unlinked = true
			return nil
		}
		return fmt.Errorf("%w: unable to unlink socket file(%s): %w", ErrIO, s.path, err)
	}
	s.unlinked = true
	log.V(2).Infof("uds: unlinked socket file(%s)", s.path)
	return nil
}

// abandon releases a Socket that failed to finish construction.
func (s *Socket) abandon() {
	s.Close()
	if err := s.Unlink(); err != nil {
		log.Warningf("uds: %s", err)
	}
}
