//go:build unix

package control

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// terminate sends SIGTERM, or SIGKILL when force is set, to pid.
// EPERM from the kernel is how a missing right to terminate surfaces here.
func terminate(pid uint32, force bool) error {
	if pid == 0 || pid > math.MaxInt32 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	sig := unix.SIGTERM
	if force {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(int(pid), sig); err != nil {
		return fmt.Errorf("failed to send signal %v to PID %d: %w", sig, pid, err)
	}
	return nil
}
