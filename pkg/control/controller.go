package control

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/srodi/procwatch/pkg/collector"
	"github.com/srodi/procwatch/pkg/report"
)

// terminateProcess allows tests to stub the OS terminate primitive.
var terminateProcess = terminate

// Controller starts and terminates processes. Failures are logged and reported
// as booleans; nothing is retried.
type Controller struct {
	source collector.Source
	namer  report.Namer
	logger logrus.FieldLogger

	// Force selects SIGKILL over SIGTERM on Unix.
	Force bool
}

// NewController returns a Controller resolving names against snapshots from source.
func NewController(source collector.Source, namer report.Namer, logger logrus.FieldLogger) *Controller {
	return &Controller{source: source, namer: namer, logger: logger}
}

// KillReport lists what TerminateByName attempted.
type KillReport struct {
	Name       string
	Matched    []uint32
	Terminated []uint32
	Failed     []uint32
}

// OK reports whether at least one process matched and every one was terminated.
func (r KillReport) OK() bool {
	return len(r.Matched) > 0 && len(r.Failed) == 0
}

// Launch splits commandLine with shell quoting rules, starts it without
// waiting and reports whether the OS created the process.
func (c *Controller) Launch(commandLine string) bool {
	argv, err := splitCommandLine(commandLine)
	if err != nil {
		c.logger.WithField("command", commandLine).WithError(err).Warn("launch rejected")
		return false
	}
	return c.LaunchArgs(argv)
}

// LaunchArgs starts argv as given, without any further splitting or unquoting.
func (c *Controller) LaunchArgs(argv []string) bool {
	log := c.logger.WithField("argv", argv)
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		log.WithError(errEmptyCommand).Warn("launch rejected")
		return false
	}
	if err := startProcess(argv); err != nil {
		log.WithError(err).Warn("launch failed")
		return false
	}
	log.Info("process launched")
	return true
}

// TerminateByID ends the process pid and reports success.
func (c *Controller) TerminateByID(pid uint32) bool {
	log := c.logger.WithField("pid", pid)
	if err := terminateProcess(pid, c.Force); err != nil {
		log.WithError(err).Warn("terminate failed")
		return false
	}
	log.Info("process terminated")
	return true
}

// TerminateByName takes a fresh snapshot and terminates every accessible
// process whose canonical name matches name case-insensitively. Every match is
// attempted even after a failure. The error is non-nil only when the snapshot
// itself cannot be taken.
func (c *Controller) TerminateByName(name string) (KillReport, error) {
	result := KillReport{Name: name}
	records, err := c.source.Acquire()
	if err != nil {
		return result, fmt.Errorf("resolving %q: %w", name, err)
	}
	for _, rec := range records {
		if !rec.Accessible || !c.namer.Matches(rec.RawName, name) {
			continue
		}
		result.Matched = append(result.Matched, rec.PID)
		if c.TerminateByID(rec.PID) {
			result.Terminated = append(result.Terminated, rec.PID)
		} else {
			result.Failed = append(result.Failed, rec.PID)
		}
	}
	if len(result.Matched) == 0 {
		c.logger.WithField("name", name).Warn("no accessible process matched")
	}
	return result, nil
}
