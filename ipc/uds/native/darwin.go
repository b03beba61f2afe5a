//go:build darwin

package native

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/shirou/gopsutil/process"
	"golang.org/x/sys/unix"
)

const (
	syscall_SOL_LOCAL     = 0
	syscall_LOCAL_PEERPID = 2
)

// sysSocket returns a close-on-exec socket of type typ. Darwin has no SOCK_CLOEXEC, so the
// flag is set under ForkLock.
func sysSocket(typ int) (int, error) {
	syscall.ForkLock.RLock()
	s, err := unix.Socket(unix.AF_UNIX, typ, 0)
	if err == nil {
		unix.CloseOnExec(s)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	return s, nil
}

// sysAccept accepts on s, the returned descriptor is close-on-exec.
func sysAccept(s int) (int, error) {
	for {
		syscall.ForkLock.RLock()
		c, _, err := unix.Accept(s)
		if err == nil {
			unix.CloseOnExec(c)
		}
		syscall.ForkLock.RUnlock()

		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return -1, os.NewSyscallError("accept", err)
		}
		return c, nil
	}
}

// PeerCred implements CredProvider.PeerCred. Darwin only reports the peer's PID, the uid and
// gid are looked up from the process table.
// Some of this came from: https://github.com/mysteriumnetwork/node/issues/2204
func (unixProvider) PeerCred(h Handle) (PeerCred, error) {
	pid, err := unix.GetsockoptInt(int(h), syscall_SOL_LOCAL, syscall_LOCAL_PEERPID)
	if err != nil {
		return PeerCred{}, fmt.Errorf("GetsockoptInt() error: %w", os.NewSyscallError("getsockopt", err))
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return PeerCred{}, fmt.Errorf("could not find PID for client connecting to socket: %w", err)
	}

	uids, err := proc.Uids()
	uid, err := peerUID(pid, uids, err)
	if err != nil {
		return PeerCred{}, err
	}

	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return PeerCred{}, fmt.Errorf("could not lookup UID(%v) for client PID(%v): %w", uid, pid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return PeerCred{}, fmt.Errorf("could not lookup GID for UID(%v) PID(%v): %w", uid, pid, err)
	}

	return PeerCred{PID: pid, UID: uid, GID: gid}, nil
}
