//go:build linux

package native

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// sysSocket returns a close-on-exec socket of type typ.
func sysSocket(typ int) (int, error) {
	s, err := unix.Socket(unix.AF_UNIX, typ|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	return s, nil
}

// sysAccept accepts on s, the returned descriptor is close-on-exec.
func sysAccept(s int) (int, error) {
	for {
		c, _, err := unix.Accept4(s, unix.SOCK_CLOEXEC)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return -1, os.NewSyscallError("accept", err)
		}
		return c, nil
	}
}

// PeerCred implements CredProvider.PeerCred.
// Ref: https://blog.jbowen.dev/2019/09/using-so_peercred-in-go/
func (unixProvider) PeerCred(h Handle) (PeerCred, error) {
	cred, err := unix.GetsockoptUcred(int(h), unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		return PeerCred{}, fmt.Errorf("GetsockoptUcred() error: %w", os.NewSyscallError("getsockopt", err))
	}
	return PeerCred{PID: int(cred.Pid), UID: int(cred.Uid), GID: int(cred.Gid)}, nil
}
