package collector

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/srodi/procwatch/pkg/types"
)

// psProcess is the subset of gopsutil's process handle the snapshot needs.
type psProcess interface {
	PID() int32
	Name() (string, error)
	MemoryInfo() (*process.MemoryInfoStat, error)
}

type gopsProcess struct {
	*process.Process
}

func (p gopsProcess) PID() int32 { return p.Pid }

// listProcesses allows tests to stub the OS process enumeration.
var listProcesses = func() ([]psProcess, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]psProcess, 0, len(procs))
	for _, p := range procs {
		out = append(out, gopsProcess{p})
	}
	return out, nil
}

// PsutilSource enumerates processes through gopsutil, which works on Linux,
// macOS and Windows alike.
type PsutilSource struct{}

// NewPsutilSource returns a gopsutil backed Source.
func NewPsutilSource() *PsutilSource {
	return &PsutilSource{}
}

// Acquire snapshots every visible process and its resident memory.
func (s *PsutilSource) Acquire() ([]types.ProcessRecord, error) {
	procs, err := listProcesses()
	if err != nil {
		return nil, fmt.Errorf("%w: listing processes: %w", ErrSnapshotUnavailable, err)
	}

	records := make([]types.ProcessRecord, 0, len(procs))
	seen := make(map[uint32]struct{}, len(procs))
	for _, p := range procs {
		pid := uint32(p.PID())
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}

		rec := types.ProcessRecord{PID: pid}
		name, err := p.Name()
		if err != nil || name == "" {
			name = fallbackName(pid)
		}
		rec.RawName = name

		// Insufficient rights and processes that exited since enumeration
		// both land here.
		if info, err := p.MemoryInfo(); err == nil && info != nil {
			rec.MemoryBytes = info.RSS
			rec.Accessible = true
		}
		records = append(records, rec)
	}
	return records, nil
}
