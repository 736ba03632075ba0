//go:build linux
// +build linux

package collector

import (
	"fmt"
	"strings"

	"github.com/prometheus/procfs"

	"github.com/srodi/procwatch/pkg/types"
)

// ProcfsSource reads the process table straight from a procfs mount.
type ProcfsSource struct {
	root string
}

// NewProcfsSource returns a Source reading from root, /proc when empty.
func NewProcfsSource(root string) *ProcfsSource {
	if strings.TrimSpace(root) == "" {
		root = procfs.DefaultMountPoint
	}
	return &ProcfsSource{root: root}
}

// Acquire lists every PID directory under the mount and reads its RSS.
func (s *ProcfsSource) Acquire() ([]types.ProcessRecord, error) {
	fs, err := procfs.NewFS(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrSnapshotUnavailable, s.root, err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrSnapshotUnavailable, s.root, err)
	}

	records := make([]types.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		pid := uint32(p.PID)
		rec := types.ProcessRecord{PID: pid}

		name, err := p.Comm()
		if err != nil || name == "" {
			name = fallbackName(pid)
		}
		rec.RawName = name

		stat, err := p.Stat()
		if err == nil {
			if rss := stat.ResidentMemory(); rss > 0 {
				rec.MemoryBytes = uint64(rss)
			}
			rec.Accessible = true
		}
		records = append(records, rec)
	}
	return records, nil
}
