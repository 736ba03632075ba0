package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/srodi/procwatch/pkg/collector"
	"github.com/srodi/procwatch/pkg/config"
	"github.com/srodi/procwatch/pkg/control"
	"github.com/srodi/procwatch/pkg/monitor"
	"github.com/srodi/procwatch/pkg/report"
	"github.com/srodi/procwatch/pkg/ui"
)

// lifecycle is the part of control.Controller the commands drive.
type lifecycle interface {
	Launch(commandLine string) bool
	LaunchArgs(argv []string) bool
	TerminateByID(pid uint32) bool
	TerminateByName(name string) (control.KillReport, error)
}

// newController allows tests to replace the lifecycle controller.
var newController = func(source collector.Source, namer report.Namer, logger logrus.FieldLogger, force bool) lifecycle {
	ctl := control.NewController(source, namer, logger)
	ctl.Force = force
	return ctl
}

type app struct {
	rc     runConfig
	source collector.Source
	logger *logrus.Logger
	out    io.Writer
}

func (a *app) list() error {
	records, err := a.source.Acquire()
	if err != nil {
		return err
	}
	summary := report.Summarize(records)
	visible := report.FilterRecords(records, a.rc.cfg.Filter())
	if a.rc.sortBy == "name" {
		report.SortByName(visible, a.rc.cfg.SortNamer())
	} else {
		report.SortByMemory(visible)
	}
	if err := ui.WriteList(a.out, visible); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	return ui.WriteSummary(a.out, summary)
}

func (a *app) groups() error {
	records, err := a.source.Acquire()
	if err != nil {
		return err
	}
	visible := report.FilterRecords(records, a.rc.cfg.Filter())
	grouped := report.Aggregate(visible, a.rc.cfg.GroupNamer())
	ordered := report.GroupsByMemory(grouped)
	if a.rc.sortBy == "name" {
		ordered = report.GroupsByName(grouped, a.rc.cfg.SortNamer())
	}
	if err := ui.WriteGroups(a.out, report.BuildGroupRows(ordered)); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	return ui.WriteSummary(a.out, report.Summarize(records))
}

func (a *app) watch(ctx context.Context) error {
	session := monitor.NewSession(a.source, a.rc.cfg, a.logger)
	updates, err := a.configUpdates(ctx)
	if err != nil {
		return err
	}

	cleanupTerminal := enableSingleView(a.logger)
	defer cleanupTerminal()

	return session.Run(ctx, func(frame monitor.Frame) {
		cfg := session.Config()
		var buf bytes.Buffer
		buf.WriteString(ui.Banner())
		if err := ui.WriteFrame(&buf, frame, ui.FrameOptions{TopK: cfg.TopK, Interval: cfg.Interval}); err != nil {
			a.logger.WithError(err).Warn("rendering frame")
			return
		}
		clearScreen(a.out)
		_, _ = a.out.Write(buf.Bytes())
	}, updates)
}

func (a *app) dashboard(ctx context.Context) error {
	session := monitor.NewSession(a.source, a.rc.cfg, a.logger)
	updates, err := a.configUpdates(ctx)
	if err != nil {
		return err
	}
	return ui.NewDashboard(a.rc.cfg.TopK).Run(ctx, session, updates)
}

// configUpdates watches the config file, if one was given, and re-applies the
// command-line overrides to every reload. It returns nil without a file.
func (a *app) configUpdates(ctx context.Context) (<-chan config.Config, error) {
	if a.rc.configPath == "" {
		return nil, nil
	}
	raw, err := config.Watch(ctx, a.rc.configPath, a.logger)
	if err != nil {
		return nil, err
	}
	out := make(chan config.Config, 1)
	go func() {
		defer close(out)
		for cfg := range raw {
			select {
			case out <- a.rc.overrides(cfg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (a *app) controller(force bool) lifecycle {
	return newController(a.source, a.rc.cfg.GroupNamer(), a.logger, force)
}

// start runs args as an argv. A single argument containing whitespace is
// taken as a whole command line and split with shell quoting rules.
func (a *app) start(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: start <program> [args...] | start '<command line>'", errUsage)
	}
	ctl := a.controller(a.rc.cfg.ForceKill)
	var ok bool
	if len(args) == 1 && strings.ContainsAny(args[0], " \t") {
		ok = ctl.Launch(args[0])
	} else {
		ok = ctl.LaunchArgs(args)
	}
	if !ok {
		return fmt.Errorf("could not start %q", args)
	}
	fmt.Fprintf(a.out, "started %q\n", args)
	return nil
}

func (a *app) kill(args []string, force bool) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: kill [-force] <pid>...", errUsage)
	}
	pids := make([]uint32, 0, len(args))
	for _, arg := range args {
		pid, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || pid == 0 {
			return fmt.Errorf("%w: invalid PID %q", errUsage, arg)
		}
		pids = append(pids, uint32(pid))
	}

	ctl := a.controller(force)
	failed := 0
	for _, pid := range pids {
		if ctl.TerminateByID(pid) {
			fmt.Fprintf(a.out, "terminated %d\n", pid)
			continue
		}
		fmt.Fprintf(a.out, "failed to terminate %d\n", pid)
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d processes not terminated", failed, len(pids))
	}
	return nil
}

func (a *app) killall(args []string, force bool) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: killall [-force] <name>", errUsage)
	}
	ctl := a.controller(force)
	result, err := ctl.TerminateByName(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d matched, %d terminated, %d failed\n",
		result.Name, len(result.Matched), len(result.Terminated), len(result.Failed))
	if len(result.Matched) == 0 {
		return fmt.Errorf("no accessible process named %q", result.Name)
	}
	if !result.OK() {
		return fmt.Errorf("not every %q process was terminated", result.Name)
	}
	return nil
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}
