package report

import (
	"github.com/srodi/procwatch/pkg/types"
)

// DeltaMonitor tracks each group's total memory between polls.
//
// A name seen for the first time reports an unknown delta. A name missing
// from a poll keeps its baseline, so when it comes back its delta is taken
// against the last value observed. Without WithEviction the baseline keeps
// one entry per distinct name ever seen.
//
// DeltaMonitor is not safe for concurrent use.
type DeltaMonitor struct {
	baseline   map[string]*baselineEntry
	poll       uint64
	evictAfter uint64
}

type baselineEntry struct {
	total    uint64
	lastSeen uint64
}

// DeltaOption customises a DeltaMonitor.
type DeltaOption func(*DeltaMonitor)

// WithEviction drops baseline entries absent for more than polls consecutive
// polls. Zero or less disables eviction.
func WithEviction(polls int) DeltaOption {
	return func(m *DeltaMonitor) {
		if polls > 0 {
			m.evictAfter = uint64(polls)
		}
	}
}

// NewDeltaMonitor returns a monitor with an empty baseline.
func NewDeltaMonitor(opts ...DeltaOption) *DeltaMonitor {
	m := &DeltaMonitor{baseline: make(map[string]*baselineEntry)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe reports one delta per group of the current poll, ordered by name,
// and makes the current totals the new baseline.
func (m *DeltaMonitor) Observe(groups map[string]types.ProcessGroup) []types.Delta {
	m.poll++
	deltas := make([]types.Delta, 0, len(groups))
	for name, g := range groups {
		d := types.Delta{Name: name, Current: g.TotalBytes}
		if prev, ok := m.baseline[name]; ok {
			d.Change = int64(g.TotalBytes) - int64(prev.total)
			d.Known = true
			prev.total = g.TotalBytes
			prev.lastSeen = m.poll
		} else {
			m.baseline[name] = &baselineEntry{total: g.TotalBytes, lastSeen: m.poll}
		}
		deltas = append(deltas, d)
	}
	m.evict()
	sortDeltas(deltas)
	return deltas
}

func (m *DeltaMonitor) evict() {
	if m.evictAfter == 0 {
		return
	}
	for name, entry := range m.baseline {
		if m.poll-entry.lastSeen > m.evictAfter {
			delete(m.baseline, name)
		}
	}
}

// Baseline returns the stored total for name.
func (m *DeltaMonitor) Baseline(name string) (uint64, bool) {
	entry, ok := m.baseline[name]
	if !ok {
		return 0, false
	}
	return entry.total, true
}

// Len is the number of names in the baseline.
func (m *DeltaMonitor) Len() int {
	return len(m.baseline)
}

// Reset forgets every baseline entry; the next poll is a first observation
// for every name.
func (m *DeltaMonitor) Reset() {
	m.baseline = make(map[string]*baselineEntry)
	m.poll = 0
}
