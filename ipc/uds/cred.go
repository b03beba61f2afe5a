package uds

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/johnsiilver/suds/ipc/uds/native"
)

// ID represents a numeric ID. Go in various libraries stores IDs such as Uid or Gid as strings.
// However in other more OS specific libraries, it might be int or int32. This simply unifies that
// so it is easier to translate for whatever need you have.
type ID int

// String returns the ID as a string.
func (i ID) String() string {
	return strconv.Itoa(int(i))
}

// Int returns the ID as an int.
func (i ID) Int() int {
	return int(i)
}

// Int32 returns the ID as an int32.
func (i ID) Int32() int32 {
	return int32(i)
}

// Cred provides the credentials of a local process.
type Cred struct {
	// PID is the process id of the process.
	PID ID
	// UID is the user id of the process.
	UID ID
	// GID is the group id of the process.
	GID ID
}

// Current provides information about the current process and user.
func Current() (Cred, *user.User, error) {
	u, err := user.Current()
	if err != nil {
		return Cred{}, nil, err
	}

	uid, _ := strconv.Atoi(u.Uid)
	gid, _ := strconv.Atoi(u.Gid)

	cred := Cred{
		PID: ID(os.Getpid()),
		UID: ID(uid),
		GID: ID(gid),
	}
	return cred, u, nil
}

// Cred returns the credentials of the process on the other end of a connected Stream socket.
// This can be used to reject clients that are not who you expect.
func (s *Socket) Cred() (Cred, error) {
	cp, ok := s.p.(native.CredProvider)
	if !ok {
		return Cred{}, fmt.Errorf("%w: provider %T cannot report peer credentials", ErrUnsupported, s.p)
	}
	if s.mode != Stream || s.role == RoleListener {
		return Cred{}, fmt.Errorf("%w: %s has no connected peer", ErrUnsupported, s)
	}
	if s.Closed() {
		return Cred{}, errClosed("read credentials from", s)
	}

	pc, err := cp.PeerCred(s.handle)
	if err != nil {
		return Cred{}, fmt.Errorf("%w: unable to read peer credentials from %s: %w", ErrIO, s, err)
	}
	return Cred{PID: ID(pc.PID), UID: ID(pc.UID), GID: ID(pc.GID)}, nil
}
