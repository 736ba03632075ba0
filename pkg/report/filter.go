package report

import (
	"strings"

	"github.com/srodi/procwatch/pkg/types"
)

// FilterConfig controls which processes appear in tables and groups.
type FilterConfig struct {
	HideKernel *bool // nil defaults to true so kernel threads stay hidden unless explicitly shown
	NameFilter string
}

func (cfg FilterConfig) hideKernelEnabled() bool {
	if cfg.HideKernel == nil {
		return true
	}
	return *cfg.HideKernel
}

// FilterRecords returns the records passing cfg, preserving order. The input
// is left untouched.
func FilterRecords(records []types.ProcessRecord, cfg FilterConfig) []types.ProcessRecord {
	filtered := make([]types.ProcessRecord, 0, len(records))
	needle := strings.ToLower(strings.TrimSpace(cfg.NameFilter))
	hideKernel := cfg.hideKernelEnabled()
	for _, rec := range records {
		if hideKernel && isKernelThread(rec) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.RawName), needle) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// isKernelThread reports PID 0 and the kernel's own worker threads. Kernel
// threads have no user address space, so they read as accessible with zero
// resident memory; a user process sharing a prefix such as "watchdogd" does not.
func isKernelThread(rec types.ProcessRecord) bool {
	if rec.PID == 0 {
		return true
	}
	if !rec.Accessible || rec.MemoryBytes != 0 {
		return false
	}
	name := strings.ToLower(rec.RawName)
	switch {
	case strings.HasPrefix(name, "kworker"), strings.HasPrefix(name, "ksoftirqd"), strings.HasPrefix(name, "kthreadd"),
		strings.HasPrefix(name, "migration"), strings.HasPrefix(name, "watchdog"), strings.HasPrefix(name, "rcu"),
		strings.HasPrefix(name, "irq/"):
		return true
	}
	return false
}
