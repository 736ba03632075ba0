package report

import (
	"fmt"

	"github.com/srodi/procwatch/pkg/types"
)

const kib = 1024.0

// FormatMemory renders bytes in MB, switching to GB from 1024 MB, always with
// two decimals: 1572864 -> "1.50 MB", 1073741824 -> "1.00 GB".
func FormatMemory(bytes uint64) string {
	mb := float64(bytes) / (kib * kib)
	if mb >= kib {
		return fmt.Sprintf("%.2f GB", mb/kib)
	}
	return fmt.Sprintf("%.2f MB", mb)
}

// FormatSize renders bytes stepping through Bytes, KB, MB and GB, dividing
// while the value exceeds 1024.
func FormatSize(bytes uint64) string {
	value := float64(bytes)
	units := []string{"Bytes", "KB", "MB", "GB"}
	unit := units[0]
	for _, next := range units[1:] {
		if value <= kib {
			break
		}
		value /= kib
		unit = next
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// FormatDelta renders a signed change, or "new" on a first observation.
func FormatDelta(d types.Delta) string {
	if !d.Known {
		return "new"
	}
	switch {
	case d.Change > 0:
		return "+" + FormatMemory(uint64(d.Change))
	case d.Change < 0:
		return "-" + FormatMemory(uint64(-d.Change))
	default:
		return FormatMemory(0)
	}
}
