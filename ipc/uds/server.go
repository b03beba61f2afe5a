package uds

import (
	"fmt"
	"time"

	log "github.com/golang/glog"
)

// Create binds a socket at path for a single peer. Any file already at path is replaced.
//
// For Stream, Create listens and blocks until the first client connects; the returned Socket
// is that connection and can be read and written. There is no way to time out this first
// accept. For Datagram, Create returns as soon as the socket is bound and the Socket can only
// be read.
//
// Call Unlink() on the Socket before the program exits.
func Create(p Provider, path string, mode Mode, options ...Option) (*Socket, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	opts, err := newOptions(options)
	if err != nil {
		return nil, err
	}

	log.V(2).Infof("uds: attempting to create %s socket(%s)", mode, path)
	h, err := p.Create(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open domain socket(%s): %w", ErrIO, path, err)
	}
	s := newSocket(p, h, path, mode, RoleServer)

	if err := opts.apply(s); err != nil {
		s.abandon()
		return nil, err
	}
	log.V(2).Infof("uds: socket created with handle %d", h)
	return s, nil
}

// CreateStream is Create for a Stream socket.
func CreateStream(p Provider, path string, options ...Option) (*Conn, error) {
	s, err := Create(p, path, Stream, options...)
	if err != nil {
		return nil, err
	}
	return AsConn(s)
}

// CreateDatagram is Create for a Datagram socket. The returned Receiver can only read.
func CreateDatagram(p Provider, path string, options ...Option) (*Receiver, error) {
	s, err := Create(p, path, Datagram, options...)
	if err != nil {
		return nil, err
	}
	return AsReceiver(s)
}

// Listener is a socket bound to a path that clients connect to. Each call to Accept() returns
// a new Socket for one client. The Listener's own Socket never carries stream data; for
// Datagram there is nothing to accept and Socket().Reader() receives the datagrams.
type Listener struct {
	s       *Socket
	backlog int
}

// Listen binds a socket at path and listens with room for backlog connections that have not
// been accepted yet. Any file already at path is replaced. Nothing is accepted until Accept()
// is called.
//
// Call Unlink() before the program exits.
func Listen(p Provider, path string, mode Mode, backlog int, options ...Option) (*Listener, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	if backlog < 0 {
		return nil, fmt.Errorf("%w: backlog %d is negative", ErrInvalidArgument, backlog)
	}
	opts, err := newOptions(options)
	if err != nil {
		return nil, err
	}

	h, err := p.Listen(path, mode, backlog)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open and listen on unix domain socket(%s): %w", ErrIO, path, err)
	}
	s := newSocket(p, h, path, mode, RoleListener)

	if err := opts.apply(s); err != nil {
		s.abandon()
		return nil, err
	}
	log.V(2).Infof("uds: listening to %s socket at %s", mode, path)
	return &Listener{s: s, backlog: backlog}, nil
}

// Accept blocks until a client connects and returns a Socket for it. The new Socket shares
// nothing with the Listener and may be handed to another goroutine. A failed Accept does not
// affect the Listener.
func (l *Listener) Accept() (*Socket, error) {
	if l.s.Closed() {
		return nil, errClosed("accept on", l.s)
	}

	log.V(2).Infof("uds: calling accept on %s", l.s)
	h, err := l.s.p.Accept(l.s.handle, l.s.mode)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to accept on %s: %w", ErrIO, l.s, err)
	}
	log.V(2).Infof("uds: accept on %s completed with handle %d", l.s, h)
	return newSocket(l.s.p, h, "", l.s.mode, RoleAccepted), nil
}

// Socket returns the Listener's own Socket.
func (l *Listener) Socket() *Socket {
	return l.s
}

// Mode returns the Listener's mode.
func (l *Listener) Mode() Mode {
	return l.s.mode
}

// Path returns the path the Listener is bound to.
func (l *Listener) Path() string {
	return l.s.path
}

// Backlog returns the backlog passed to Listen.
func (l *Listener) Backlog() int {
	return l.backlog
}

// SetTimeout bounds how long Accept() will block. 0 blocks forever.
func (l *Listener) SetTimeout(d time.Duration) error {
	return l.s.SetTimeout(d)
}

// Close stops listening. Sockets already returned by Accept() are unaffected and the socket
// file remains until Unlink() is called.
func (l *Listener) Close() error {
	return l.s.Close()
}

// Unlink removes the socket file.
func (l *Listener) Unlink() error {
	return l.s.Unlink()
}

// StreamListener is a Stream Listener whose Accept returns a *Conn.
type StreamListener struct {
	l *Listener
}

// ListenStream is Listen for Stream sockets.
func ListenStream(p Provider, path string, backlog int, options ...Option) (*StreamListener, error) {
	l, err := Listen(p, path, Stream, backlog, options...)
	if err != nil {
		return nil, err
	}
	return &StreamListener{l: l}, nil
}

// Accept is Listener.Accept for a Stream socket.
func (s *StreamListener) Accept() (*Conn, error) {
	sock, err := s.l.Accept()
	if err != nil {
		return nil, err
	}
	return AsConn(sock)
}

// Listener returns the untyped Listener.
func (s *StreamListener) Listener() *Listener {
	return s.l
}

// Path returns the path the StreamListener is bound to.
func (s *StreamListener) Path() string {
	return s.l.Path()
}

// SetTimeout bounds how long Accept() will block. 0 blocks forever.
func (s *StreamListener) SetTimeout(d time.Duration) error {
	return s.l.SetTimeout(d)
}

// Close stops listening.
func (s *StreamListener) Close() error {
	return s.l.Close()
}

// Unlink removes the socket file.
func (s *StreamListener) Unlink() error {
	return s.l.Unlink()
}
