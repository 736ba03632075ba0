package report

import (
	"fmt"

	"github.com/srodi/procwatch/pkg/types"
)

// SelectFocus picks the group that grew the most since the previous poll.
// First observations and shrinking or flat groups never qualify.
func SelectFocus(deltas []types.Delta) *types.Delta {
	var best *types.Delta
	for i := range deltas {
		d := deltas[i]
		if !d.Known || d.Change <= 0 {
			continue
		}
		if best == nil || d.Change > best.Change {
			copy := d
			best = &copy
		}
	}
	return best
}

// FocusSummary returns a short explanation string for the status line.
func FocusSummary(d types.Delta) string {
	return fmt.Sprintf("%s grew %s since last poll, now %s",
		d.Name, FormatDelta(d), FormatMemory(d.Current))
}
