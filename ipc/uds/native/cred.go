package native

import "fmt"

// peerUID picks the real uid out of a process's uids as reported by gopsutil.
func peerUID(pid int, uids []int32, err error) (int, error) {
	if err != nil {
		return 0, fmt.Errorf("could not find UIDs associated with client's PID(%v): %w", pid, err)
	}
	if len(uids) == 0 {
		return 0, fmt.Errorf("client's PID(%v) has no UIDs", pid)
	}
	return int(uids[0]), nil
}
