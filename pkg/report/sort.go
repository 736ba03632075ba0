package report

import (
	"sort"
	"strings"

	"github.com/srodi/procwatch/pkg/types"
)

// SortByName orders records in place by canonical name. Accessible records
// always precede inaccessible ones; inaccessible records keep input order.
func SortByName(records []types.ProcessRecord, namer Namer) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if a.Accessible != b.Accessible {
			return a.Accessible
		}
		if !a.Accessible {
			return false
		}
		return namer.Less(a.RawName, b.RawName)
	})
}

// SortByMemory orders records in place by resident memory, largest first,
// after the same accessibility partition as SortByName. Ties keep input order.
func SortByMemory(records []types.ProcessRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if a.Accessible != b.Accessible {
			return a.Accessible
		}
		if !a.Accessible {
			return false
		}
		return a.MemoryBytes > b.MemoryBytes
	})
}

// GroupsByMemory returns the groups ordered by total memory descending,
// ties broken by name.
func GroupsByMemory(groups map[string]types.ProcessGroup) []types.ProcessGroup {
	out := groupSlice(groups)
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBytes != out[j].TotalBytes {
			return out[i].TotalBytes > out[j].TotalBytes
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GroupsByName returns the groups ordered by name under the namer's case
// policy. Names equal under that policy fall back to byte order.
func GroupsByName(groups map[string]types.ProcessGroup, namer Namer) []types.ProcessGroup {
	out := groupSlice(groups)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Name, out[j].Name
		if namer.lessCanonical(a, b) {
			return true
		}
		if namer.lessCanonical(b, a) {
			return false
		}
		return a < b
	})
	return out
}

func groupSlice(groups map[string]types.ProcessGroup) []types.ProcessGroup {
	out := make([]types.ProcessGroup, 0, len(groups))
	for key, g := range groups {
		g.Name = key
		out = append(out, g)
	}
	return out
}

func sortDeltas(deltas []types.Delta) {
	sort.Slice(deltas, func(i, j int) bool {
		a, b := strings.ToLower(deltas[i].Name), strings.ToLower(deltas[j].Name)
		if a != b {
			return a < b
		}
		return deltas[i].Name < deltas[j].Name
	})
}
