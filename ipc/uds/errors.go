package uds

import (
	"errors"
	"fmt"
)

var (
	// ErrIO indicates a system call failed. The underlying error is wrapped as well, so
	// errors.Is(err, unix.ECONNREFUSED) and friends work.
	ErrIO = errors.New("uds: i/o failure")

	// ErrUnsupported indicates a direction or operation the Socket's mode and role do not
	// allow. This is a programming error, retrying will not help.
	ErrUnsupported = errors.New("uds: unsupported capability")

	// ErrInvalidArgument indicates a bad path, mode, backlog, timeout or buffer range. It is
	// always detected before any system call is made.
	ErrInvalidArgument = errors.New("uds: invalid argument")
)

// IsTimeout reports whether err was caused by a blocking call outlasting the timeout set with
// SetTimeout().
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return false
}

func errClosed(op string, s *Socket) error {
	return fmt.Errorf("%w: cannot %s %s, it is closed", ErrIO, op, s)
}

func checkPath(path string) error {
	switch {
	case path == "":
		return fmt.Errorf("%w: socket path is empty", ErrInvalidArgument)
	case len(path) >= MaxPathLen:
		return fmt.Errorf("%w: socket path(%s) length must be less than %d characters", ErrInvalidArgument, path, MaxPathLen)
	}
	return nil
}

func checkMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown socket mode %d", ErrInvalidArgument, int(mode))
	}
	return nil
}

// checkRange validates b[off:off+n].
func checkRange(b []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(b) || n > len(b)-off {
		return fmt.Errorf("%w: range offset %d length %d is outside a buffer of length %d", ErrInvalidArgument, off, n, len(b))
	}
	return nil
}
