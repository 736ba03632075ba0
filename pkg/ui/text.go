package ui

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/srodi/procwatch/pkg/monitor"
	"github.com/srodi/procwatch/pkg/report"
	"github.com/srodi/procwatch/pkg/types"
)

const accessDenied = "Access Denied"

// FrameOptions controls the watch view layout.
type FrameOptions struct {
	TopK     int
	Interval time.Duration
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteList prints one row per record in the given order. Records that could
// not be queried show "Access Denied" instead of a size.
func WriteList(w io.Writer, records []types.ProcessRecord) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "PID\tNAME\tMEMORY")
	for _, rec := range records {
		size := accessDenied
		if rec.Accessible {
			size = report.FormatSize(rec.MemoryBytes)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", rec.PID, rec.RawName, size)
	}
	return tw.Flush()
}

// WriteSummary prints the one-line accessibility summary of a snapshot.
func WriteSummary(w io.Writer, s types.Summary) error {
	_, err := fmt.Fprintf(w, "%d processes, %d accessible, %d access denied, %s resident\n",
		s.Total, s.Accessible, s.Inaccessible, report.FormatMemory(s.AccessibleBytes))
	return err
}

// WriteGroups prints grouped rows in the given order.
func WriteGroups(w io.Writer, rows []report.GroupRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tINSTANCES\tTOTAL\tSHARE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", row.Name, row.Instances, report.FormatMemory(row.TotalBytes), formatShare(row.Share))
	}
	return tw.Flush()
}

// WriteFrame renders one monitoring poll. Groups that moved are listed a second
// time in name order.
func WriteFrame(w io.Writer, frame monitor.Frame, opts FrameOptions) error {
	fmt.Fprintf(w, "procwatch (press Ctrl+C to exit)\n")
	fmt.Fprintf(w, "Updated: %s | Interval: %v\n", frame.Taken.Format(time.RFC3339), opts.Interval)
	if err := WriteSummary(w, frame.Summary); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if frame.Focus != nil {
		fmt.Fprintf(w, "[!] Focus: %s\n\n", report.FocusSummary(*frame.Focus))
	}

	byName := make(map[string]types.Delta, len(frame.Deltas))
	for _, d := range frame.Deltas {
		byName[d.Name] = d
	}

	top := report.TopK(frame.Groups, opts.TopK)
	fmt.Fprintf(w, "[Top %d groups by memory]\n", len(top))
	if len(top) == 0 {
		fmt.Fprintln(w, "No processes matched current filters")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "NAME\tINSTANCES\tTOTAL\tCHANGE\tSHARE")
		for _, row := range top {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", row.Name, row.Instances,
				report.FormatMemory(row.TotalBytes), report.FormatDelta(byName[row.Name]), formatShare(row.Share))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	moved := changedDeltas(frame.Deltas)
	fmt.Fprintf(w, "\n[Changes since last poll]\n")
	if len(moved) == 0 {
		fmt.Fprintln(w, "No group changed")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tTOTAL\tCHANGE")
	for _, d := range moved {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, report.FormatMemory(d.Current), report.FormatDelta(d))
	}
	return tw.Flush()
}

// changedDeltas keeps first observations and non-zero changes, in input order.
func changedDeltas(deltas []types.Delta) []types.Delta {
	out := make([]types.Delta, 0, len(deltas))
	for _, d := range deltas {
		if !d.Known || d.Change != 0 {
			out = append(out, d)
		}
	}
	return out
}

func formatShare(share float64) string {
	if share <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", share)
}
