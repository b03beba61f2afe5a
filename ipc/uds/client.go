package uds

import (
	"fmt"

	log "github.com/golang/glog"
)

// Dial connects to the socket at path. A Stream client can read and write, a Datagram client
// can only write. The connect blocks until the server accepts or refuses; if it fails no
// Socket is returned.
func Dial(p Provider, path string, mode Mode, options ...Option) (*Socket, error) {
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

	log.V(2).Infof("uds: dialing %s socket(%s)", mode, path)
	h, err := p.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open the socket(%s): %w", ErrIO, path, err)
	}
	s := newSocket(p, h, path, mode, RoleClient)

	if err := opts.apply(s); err != nil {
		s.abandon()
		return nil, err
	}
	log.V(2).Infof("uds: opened %s", s)
	return s, nil
}

// DialStream connects to the Stream socket at path.
func DialStream(p Provider, path string, options ...Option) (*Conn, error) {
	s, err := Dial(p, path, Stream, options...)
	if err != nil {
		return nil, err
	}
	return AsConn(s)
}

// DialDatagram connects to the Datagram socket at path. The returned Sender can only write.
func DialDatagram(p Provider, path string, options ...Option) (*Sender, error) {
	s, err := Dial(p, path, Datagram, options...)
	if err != nil {
		return nil, err
	}
	return AsSender(s)
}
