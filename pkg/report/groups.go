package report

import (
	"github.com/srodi/procwatch/pkg/collector/memory"
	"github.com/srodi/procwatch/pkg/types"
)

// totalMemoryBytes allows tests to stub the host memory lookup.
var totalMemoryBytes = memory.TotalMemoryBytes

// GroupRow is a group ready for a table, with its share of physical memory.
type GroupRow struct {
	types.ProcessGroup
	Share float64
}

// Aggregate folds a snapshot into groups keyed by canonical name.
// Inaccessible records never create or grow a group.
func Aggregate(records []types.ProcessRecord, namer Namer) map[string]types.ProcessGroup {
	groups := make(map[string]types.ProcessGroup)
	for _, rec := range records {
		if !rec.Accessible {
			continue
		}
		key := namer.Key(rec.RawName)
		g := groups[key]
		g.Name = key
		g.Instances++
		g.TotalBytes += rec.MemoryBytes
		groups[key] = g
	}
	return groups
}

// Summarize counts accessible and inaccessible records of a snapshot.
func Summarize(records []types.ProcessRecord) types.Summary {
	s := types.Summary{Total: len(records)}
	for _, rec := range records {
		if !rec.Accessible {
			s.Inaccessible++
			continue
		}
		s.Accessible++
		s.AccessibleBytes += rec.MemoryBytes
	}
	return s
}

// BuildGroupRows attaches the share of physical memory to ordered groups.
// Share stays zero when total memory cannot be read.
func BuildGroupRows(groups []types.ProcessGroup) []GroupRow {
	total, err := totalMemoryBytes()
	if err != nil {
		total = 0
	}
	rows := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		row := GroupRow{ProcessGroup: g}
		if total > 0 {
			row.Share = 100 * float64(g.TotalBytes) / float64(total)
		}
		rows = append(rows, row)
	}
	return rows
}

// TopK trims a slice to at most k entries; k <= 0 keeps everything.
func TopK[T any](rows []T, k int) []T {
	if k > 0 && len(rows) > k {
		return rows[:k]
	}
	return rows
}
