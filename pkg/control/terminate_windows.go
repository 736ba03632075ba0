//go:build windows

package control

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// terminate opens pid with terminate rights and ends it. Windows has no
// graceful equivalent of SIGTERM for arbitrary processes, so force is ignored.
func terminate(pid uint32, force bool) error {
	if pid == 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid)
	if err != nil {
		return fmt.Errorf("opening PID %d for termination: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, 1); err != nil {
		return fmt.Errorf("terminating PID %d: %w", pid, err)
	}
	return nil
}
