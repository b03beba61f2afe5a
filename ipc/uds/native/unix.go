//go:build linux || darwin

package native

import (
	"fmt"
	"os"
	"runtime"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// unixProvider implements Provider with blocking system calls on raw descriptors. It holds no
// state, every Handle is a kernel file descriptor.
type unixProvider struct{}

// Load returns the Provider for this platform. It verifies the kernel will hand out a Unix
// domain socket before returning.
func Load() (Provider, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("unix domain sockets are not usable on %s/%s: %w", runtime.GOOS, runtime.GOARCH, os.NewSyscallError("socketpair", err))
	}
	unix.Close(fds[0])
	unix.Close(fds[1])

	log.V(1).Infof("native: unix domain socket provider loaded for %s/%s", runtime.GOOS, runtime.GOARCH)
	return unixProvider{}, nil
}

func sockType(mode Mode) int {
	if mode == Datagram {
		return unix.SOCK_DGRAM
	}
	return unix.SOCK_STREAM
}

// bind creates a socket and binds it to path. Whatever was at path is removed first. If that
// removal fails, so will the bind.
func (unixProvider) bind(path string, mode Mode) (int, error) {
	s, err := sysSocket(sockType(mode))
	if err != nil {
		return -1, err
	}
	unix.Unlink(path)

	if err := unix.Bind(s, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(s)
		return -1, os.NewSyscallError("bind", err)
	}
	return s, nil
}

// Create implements Provider.Create.
func (p unixProvider) Create(path string, mode Mode) (Handle, error) {
	s, err := p.bind(path, mode)
	if err != nil {
		return InvalidHandle, err
	}
	if mode == Datagram {
		return Handle(s), nil
	}

	if err := unix.Listen(s, 0); err != nil {
		unix.Close(s)
		return InvalidHandle, os.NewSyscallError("listen", err)
	}
	c, err := sysAccept(s)
	// Only one peer is ever accepted, the listening descriptor has no further use.
	unix.Close(s)
	if err != nil {
		return InvalidHandle, err
	}
	return Handle(c), nil
}

// Listen implements Provider.Listen.
func (p unixProvider) Listen(path string, mode Mode, backlog int) (Handle, error) {
	s, err := p.bind(path, mode)
	if err != nil {
		return InvalidHandle, err
	}
	if mode == Datagram {
		return Handle(s), nil
	}

	if err := unix.Listen(s, backlog); err != nil {
		unix.Close(s)
		return InvalidHandle, os.NewSyscallError("listen", err)
	}
	return Handle(s), nil
}

// Accept implements Provider.Accept.
func (unixProvider) Accept(h Handle, mode Mode) (Handle, error) {
	if h == InvalidHandle {
		return InvalidHandle, os.NewSyscallError("accept", unix.EBADF)
	}
	if mode == Datagram {
		return InvalidHandle, os.NewSyscallError("accept", unix.EOPNOTSUPP)
	}

	c, err := sysAccept(int(h))
	if err != nil {
		return InvalidHandle, err
	}
	return Handle(c), nil
}

// Open implements Provider.Open.
func (unixProvider) Open(path string, mode Mode) (Handle, error) {
	s, err := sysSocket(sockType(mode))
	if err != nil {
		return InvalidHandle, err
	}
	if err := unix.Connect(s, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(s)
		return InvalidHandle, os.NewSyscallError("connect", err)
	}
	return Handle(s), nil
}

// Read implements Provider.Read.
func (unixProvider) Read(h Handle, b []byte) (int, error) {
	for {
		n, err := unix.Read(int(h), b)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return 0, os.NewSyscallError("read", err)
		}
		return n, nil
	}
}

// Write implements Provider.Write.
func (unixProvider) Write(h Handle, b []byte) (int, error) {
	for {
		n, err := unix.Write(int(h), b)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return 0, os.NewSyscallError("write", err)
		}
		return n, nil
	}
}

// Timeout implements Provider.Timeout. Both the receive and send timeouts are set, on Linux
// the receive timeout also bounds accept().
func (unixProvider) Timeout(h Handle, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(int(h), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if err := unix.SetsockoptTimeval(int(h), unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}

// Close implements Provider.Close. Both directions are shut down before the descriptor is
// released so the peer sees end-of-stream even if the descriptor was inherited elsewhere.
func (unixProvider) Close(h Handle) error {
	unix.Shutdown(int(h), unix.SHUT_RDWR)
	if err := unix.Close(int(h)); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

// ShutdownRead implements Provider.ShutdownRead.
func (unixProvider) ShutdownRead(h Handle) error {
	if err := unix.Shutdown(int(h), unix.SHUT_RD); err != nil {
		return os.NewSyscallError("shutdown", err)
	}
	return nil
}

// ShutdownWrite implements Provider.ShutdownWrite.
func (unixProvider) ShutdownWrite(h Handle) error {
	if err := unix.Shutdown(int(h), unix.SHUT_WR); err != nil {
		return os.NewSyscallError("shutdown", err)
	}
	return nil
}

// Unlink implements Provider.Unlink.
func (unixProvider) Unlink(path string) error {
	if err := unix.Unlink(path); err != nil {
		return os.NewSyscallError("unlink", err)
	}
	return nil
}
