package collector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/srodi/procwatch/pkg/types"
)

// ErrSnapshotUnavailable is returned when the process list itself cannot be
// enumerated. Per-process failures never produce it.
var ErrSnapshotUnavailable = errors.New("process snapshot unavailable")

// Source takes one snapshot of the processes running on this host.
//
// Acquire returns records in the order the OS reports them. A process whose
// memory cannot be queried is still returned, flagged as inaccessible with a
// zero byte count. Acquire does not retry and has no timeout.
type Source interface {
	Acquire() ([]types.ProcessRecord, error)
}

// Source kinds accepted by New.
const (
	KindGopsutil = "gopsutil"
	KindProcfs   = "procfs"
)

// New returns the Source registered under kind. An empty kind selects gopsutil.
func New(kind, procRoot string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindGopsutil:
		return NewPsutilSource(), nil
	case KindProcfs:
		return NewProcfsSource(procRoot), nil
	default:
		return nil, fmt.Errorf("unknown process source %q", kind)
	}
}

func fallbackName(pid uint32) string {
	return fmt.Sprintf("pid-%d", pid)
}
