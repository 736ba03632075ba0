package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srodi/procwatch/pkg/collector"
	"github.com/srodi/procwatch/pkg/config"
)

const usage = `procwatch - process memory inventory

Usage:
  procwatch <command> [flags] [args]

Commands:
  list       one row per process (-sort name|memory)
  groups     processes grouped by executable name (-sort name|memory)
  watch      refresh grouped totals and changes every interval
  dashboard  full-screen watch view
  start      launch a program with its arguments, or one quoted command line
  kill       terminate processes by PID (-force)
  killall    terminate every process with the given name (-force)
  help       show this text

Run 'procwatch <command> -h' for the flags of a command.
`

var errUsage = errors.New("usage")

var commands = map[string]bool{
	"list": true, "groups": true, "watch": true, "dashboard": true,
	"start": true, "kill": true, "killall": true,
}

// newSource allows tests to replace the process source.
var newSource = collector.New

// runConfig is what a command needs once flags and the config file are merged.
type runConfig struct {
	cfg        config.Config
	configPath string
	logFile    string
	sortBy     string
	overrides  func(config.Config) config.Config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	command, rest := args[0], args[1:]
	switch command {
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	}
	if !commands[command] {
		fmt.Fprintf(stderr, "procwatch: unknown command %q\n\n%s", command, usage)
		return 2
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var force bool
	rc, err := parseConfig(fs, command, rest, &force)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "procwatch %s: %v\n", command, err)
		return 2
	}

	logger, closeLog, err := newLogger(rc.cfg.LogLevel, rc.logFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "procwatch: %v\n", err)
		return 2
	}
	defer closeLog()
	if command == "dashboard" && rc.logFile == "" {
		// Anything written to the terminal would tear the full-screen view.
		logger.SetOutput(io.Discard)
	}

	source, err := newSource(rc.cfg.Source, rc.cfg.ProcRoot)
	if err != nil {
		logger.WithError(err).Error("selecting process source")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{rc: rc, source: source, logger: logger, out: stdout}
	switch command {
	case "list":
		err = app.list()
	case "groups":
		err = app.groups()
	case "watch":
		err = app.watch(ctx)
	case "dashboard":
		err = app.dashboard(ctx)
	case "start":
		err = app.start(fs.Args())
	case "kill":
		err = app.kill(fs.Args(), force)
	case "killall":
		err = app.killall(fs.Args(), force)
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "procwatch %s: %v\n", command, err)
		return 2
	}
	if err != nil {
		logger.WithError(err).Error(command + " failed")
		return 1
	}
	return 0
}

// parseConfig registers the common flags plus the ones specific to command,
// loads the config file and lets explicitly set flags win over it.
func parseConfig(fs *flag.FlagSet, command string, args []string, force *bool) (runConfig, error) {
	configPath := fs.String("config", "", "YAML config file; watched for changes by watch and dashboard")
	interval := fs.Duration("interval", 0, "poll interval (e.g. 2s, 1m)")
	source := fs.String("source", "", "process source: gopsutil or procfs")
	topK := fs.Int("topk", 0, "number of groups to display")
	hideKernel := fs.Bool("hide-kernel", true, "hide kernel threads such as kworker, ksoftirqd, etc")
	filter := fs.String("filter", "", "only show processes whose name contains this substring (case-insensitive)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFile := fs.String("log-file", "", "write logs to this file instead of stderr")

	var sortBy *string
	switch command {
	case "list", "groups":
		sortBy = fs.String("sort", "memory", "sort order: name or memory")
	case "kill", "killall":
		fs.BoolVar(force, "force", false, "send SIGKILL instead of SIGTERM on Unix")
	}

	if err := fs.Parse(args); err != nil {
		return runConfig{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	overrides := func(cfg config.Config) config.Config {
		if set["interval"] {
			cfg.Interval = *interval
		}
		if set["source"] {
			cfg.Source = *source
		}
		if set["topk"] {
			cfg.TopK = *topK
		}
		if set["hide-kernel"] {
			hide := *hideKernel
			cfg.HideKernel = &hide
		}
		if set["filter"] {
			cfg.NameFilter = *filter
		}
		if set["log-level"] {
			cfg.LogLevel = *logLevel
		}
		if set["force"] {
			cfg.ForceKill = *force
		}
		return cfg.Normalized()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return runConfig{}, err
	}
	rc := runConfig{
		cfg:        overrides(cfg),
		configPath: *configPath,
		logFile:    *logFile,
		overrides:  overrides,
	}
	if sortBy != nil {
		rc.sortBy = *sortBy
		if rc.sortBy != "name" && rc.sortBy != "memory" {
			return runConfig{}, fmt.Errorf("invalid -sort %q: want name or memory", rc.sortBy)
		}
	}
	*force = rc.cfg.ForceKill
	return rc, nil
}

// newLogger builds the process-wide logger. The returned func closes the log
// file, if any.
func newLogger(level, path string, stderr io.Writer) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	logger.SetOutput(stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	if path == "" {
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { _ = f.Close() }, nil
}
