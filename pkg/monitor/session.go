package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srodi/procwatch/pkg/collector"
	"github.com/srodi/procwatch/pkg/config"
	"github.com/srodi/procwatch/pkg/report"
	"github.com/srodi/procwatch/pkg/types"
)

// Frame is everything one poll produced for display.
type Frame struct {
	Taken   time.Time
	Summary types.Summary
	Records []types.ProcessRecord
	Groups  []report.GroupRow
	Deltas  []types.Delta
	Focus   *types.Delta
}

// Session owns one delta baseline and drives the poll cycle. It must be used
// from a single goroutine.
type Session struct {
	source collector.Source
	cfg    config.Config
	namer  report.Namer
	deltas *report.DeltaMonitor
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewSession returns a session polling source under cfg.
func NewSession(source collector.Source, cfg config.Config, logger logrus.FieldLogger) *Session {
	return &Session{
		source: source,
		cfg:    cfg,
		namer:  cfg.GroupNamer(),
		deltas: report.NewDeltaMonitor(report.WithEviction(cfg.EvictAfter)),
		logger: logger,
		now:    time.Now,
	}
}

// Config returns the configuration currently in effect.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Poll takes one snapshot and derives the frame from it. On error the
// baseline is left untouched.
func (s *Session) Poll() (Frame, error) {
	records, err := s.source.Acquire()
	if err != nil {
		return Frame{}, fmt.Errorf("polling processes: %w", err)
	}

	visible := report.FilterRecords(records, s.cfg.Filter())
	report.SortByMemory(visible)
	groups := report.Aggregate(visible, s.namer)
	deltas := s.deltas.Observe(groups)

	return Frame{
		Taken:   s.now(),
		Summary: report.Summarize(records),
		Records: visible,
		Groups:  report.BuildGroupRows(report.GroupsByMemory(groups)),
		Deltas:  deltas,
		Focus:   report.SelectFocus(deltas),
	}, nil
}

// Apply switches to cfg. A change to the grouping key or eviction policy
// starts a fresh baseline since old keys would no longer line up.
func (s *Session) Apply(cfg config.Config) {
	prev := s.cfg
	if cfg.Source != prev.Source || cfg.ProcRoot != prev.ProcRoot {
		src, err := collector.New(cfg.Source, cfg.ProcRoot)
		if err != nil {
			s.logger.WithError(err).Warn("keeping previous process source")
			cfg.Source, cfg.ProcRoot = prev.Source, prev.ProcRoot
		} else {
			s.source = src
		}
	}

	namer := cfg.GroupNamer()
	if namer != s.namer || cfg.EvictAfter != prev.EvictAfter {
		s.namer = namer
		s.deltas = report.NewDeltaMonitor(report.WithEviction(cfg.EvictAfter))
		s.logger.WithField("group_case", cfg.GroupCase).Info("delta baseline reset")
	}
	s.cfg = cfg
}

// Run polls once immediately and then every interval until ctx is done,
// handing each frame to render. A failed poll is logged and skipped so the
// previous frame stays on screen. Configs received on updates are applied
// between polls; updates may be nil.
func (s *Session) Run(ctx context.Context, render func(Frame), updates <-chan config.Config) error {
	s.pollAndRender(render)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			s.Apply(cfg)
			ticker.Reset(s.cfg.Interval)
		case <-ticker.C:
			s.pollAndRender(render)
		}
	}
}

func (s *Session) pollAndRender(render func(Frame)) {
	frame, err := s.Poll()
	if err != nil {
		s.logger.WithError(err).Warn("snapshot failed")
		return
	}
	render(frame)
}
