package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	termui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/srodi/procwatch/pkg/config"
	"github.com/srodi/procwatch/pkg/monitor"
	"github.com/srodi/procwatch/pkg/report"
)

// historyLen bounds the resident-memory sparkline.
const historyLen = 120

// Dashboard is the full-screen view fed by a monitoring session.
type Dashboard struct {
	topK int

	status  *widgets.Paragraph
	groups  *widgets.Table
	changes *widgets.Table
	trend   *widgets.Sparkline
	trendGr *widgets.SparklineGroup
	grid    *termui.Grid

	resident []float64
}

// NewDashboard lays out the widgets. It does not touch the terminal.
func NewDashboard(topK int) *Dashboard {
	d := &Dashboard{topK: topK}

	d.status = widgets.NewParagraph()
	d.status.Title = " procwatch (q to quit) "
	d.status.BorderStyle.Fg = termui.ColorCyan

	d.groups = widgets.NewTable()
	d.groups.Title = " Groups by memory "
	d.groups.TextStyle = termui.NewStyle(termui.ColorWhite)
	d.groups.RowSeparator = false
	d.groups.BorderStyle.Fg = termui.ColorGreen
	d.groups.RowStyles = map[int]termui.Style{0: termui.NewStyle(termui.ColorGreen, termui.ColorClear, termui.ModifierBold)}

	d.changes = widgets.NewTable()
	d.changes.Title = " Changes since last poll "
	d.changes.TextStyle = termui.NewStyle(termui.ColorWhite)
	d.changes.RowSeparator = false
	d.changes.BorderStyle.Fg = termui.ColorYellow
	d.changes.RowStyles = map[int]termui.Style{0: termui.NewStyle(termui.ColorYellow, termui.ColorClear, termui.ModifierBold)}

	d.trend = widgets.NewSparkline()
	d.trend.LineColor = termui.ColorMagenta
	d.trendGr = widgets.NewSparklineGroup(d.trend)
	d.trendGr.Title = " Resident memory "
	d.trendGr.BorderStyle.Fg = termui.ColorMagenta

	d.grid = termui.NewGrid()
	d.grid.Set(
		termui.NewRow(0.2,
			termui.NewCol(0.6, d.status),
			termui.NewCol(0.4, d.trendGr),
		),
		termui.NewRow(0.8,
			termui.NewCol(0.6, d.groups),
			termui.NewCol(0.4, d.changes),
		),
	)

	d.Update(monitor.Frame{})
	return d
}

// Update copies a frame into the widgets.
func (d *Dashboard) Update(frame monitor.Frame) {
	var status strings.Builder
	_ = WriteSummary(&status, frame.Summary)
	if frame.Focus != nil {
		status.WriteString("Focus: " + report.FocusSummary(*frame.Focus) + "\n")
	}
	if !frame.Taken.IsZero() {
		status.WriteString("Updated: " + frame.Taken.Format("15:04:05"))
	}
	d.status.Text = status.String()

	deltas := make(map[string]string, len(frame.Deltas))
	for _, delta := range frame.Deltas {
		deltas[delta.Name] = report.FormatDelta(delta)
	}

	d.groups.Rows = [][]string{{"NAME", "INST", "TOTAL", "CHANGE", "SHARE"}}
	for _, row := range report.TopK(frame.Groups, d.topK) {
		d.groups.Rows = append(d.groups.Rows, []string{
			row.Name,
			strconv.Itoa(row.Instances),
			report.FormatMemory(row.TotalBytes),
			deltas[row.Name],
			formatShare(row.Share),
		})
	}

	d.changes.Rows = [][]string{{"NAME", "TOTAL", "CHANGE"}}
	for _, delta := range changedDeltas(frame.Deltas) {
		d.changes.Rows = append(d.changes.Rows, []string{
			delta.Name,
			report.FormatMemory(delta.Current),
			report.FormatDelta(delta),
		})
	}

	if frame.Taken.IsZero() {
		return
	}
	d.resident = append(d.resident, float64(frame.Summary.AccessibleBytes)/(1<<20))
	if len(d.resident) > historyLen {
		d.resident = d.resident[len(d.resident)-historyLen:]
	}
	d.trend.Data = d.resident
	d.trend.Title = report.FormatMemory(frame.Summary.AccessibleBytes)
}

// Run takes over the terminal and renders frames from session until ctx is
// done or the user presses q or Ctrl+C.
func (d *Dashboard) Run(ctx context.Context, session *monitor.Session, updates <-chan config.Config) error {
	if err := termui.Init(); err != nil {
		return fmt.Errorf("initializing terminal ui: %w", err)
	}
	defer termui.Close()

	width, height := termui.TerminalDimensions()
	d.grid.SetRect(0, 0, width, height)
	termui.Render(d.grid)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan monitor.Frame, 1)
	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx, func(f monitor.Frame) {
			select {
			case frames <- f:
			case <-ctx.Done():
			}
		}, updates)
	}()

	events := termui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return <-done
		case e := <-events:
			switch {
			case e.Type == termui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>"):
				cancel()
				return <-done
			case e.Type == termui.ResizeEvent:
				payload := e.Payload.(termui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				termui.Clear()
				termui.Render(d.grid)
			}
		case f := <-frames:
			d.Update(f)
			termui.Render(d.grid)
		}
	}
}
