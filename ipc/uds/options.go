package uds

import (
	"fmt"
	"os"
	"time"
)

// Option is an optional argument to the Dial, Create and Listen constructors.
type Option func(o *options)

type options struct {
	fileMode    os.FileMode
	setFileMode bool

	uid, gid int
	chown    bool

	timeout    time.Duration
	setTimeout bool
}

// FileMode sets the permissions of the socket file once it is bound. Suggest 0770. Only applies
// to Create and Listen. A stream Create has already accepted its peer by the time the
// permissions are set, so restrict the containing directory if that matters.
//
// OSX Note:
//
//	The socket cannot be chown'd if the containing directory doesn't have a 0770 mask
//	(operation not permitted). So opening in os.TempDir() will fail. You can simply put a
//	sub-directory with those perms and it will work.
func FileMode(mode os.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
		o.setFileMode = true
	}
}

// Chown sets the uid and gid of the socket file once it is bound. Only applies to Create and
// Listen.
func Chown(uid, gid int) Option {
	return func(o *options) {
		o.uid = uid
		o.gid = gid
		o.chown = true
	}
}

// Timeout calls SetTimeout(d) on the Socket as soon as it is constructed. On a Listener this
// bounds every Accept(). Create blocks for its first peer before the timeout can be set.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
		o.setTimeout = true
	}
}

func newOptions(opts []Option) (options, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.setTimeout && o.timeout < 0 {
		return o, fmt.Errorf("%w: timeout %v is negative", ErrInvalidArgument, o.timeout)
	}
	return o, nil
}

// apply applies the options to a freshly constructed Socket.
func (o options) apply(s *Socket) error {
	if o.setTimeout {
		if err := s.SetTimeout(o.timeout); err != nil {
			return err
		}
	}

	if !s.role.ownsPath() {
		return nil
	}
	if o.setFileMode {
		if err := os.Chmod(s.path, o.fileMode); err != nil {
			return fmt.Errorf("%w: could not chmod the socket file(%s): %w", ErrIO, s.path, err)
		}
	}
	if o.chown {
		if err := os.Chown(s.path, o.uid, o.gid); err != nil {
			return fmt.Errorf("%w: could not chown the socket file(%s): %w", ErrIO, s.path, err)
		}
	}
	return nil
}
