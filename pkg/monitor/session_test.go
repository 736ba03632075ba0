package monitor

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/procwatch/pkg/collector"
	"github.com/srodi/procwatch/pkg/config"
	"github.com/srodi/procwatch/pkg/types"
)

const mb = 1 << 20

// scriptedSource replays one snapshot (or error) per Acquire call and then
// repeats the last one.
type scriptedSource struct {
	polls [][]types.ProcessRecord
	errs  []error
	calls int
}

func (s *scriptedSource) Acquire() ([]types.ProcessRecord, error) {
	i := s.calls
	s.calls++
	if i >= len(s.polls) {
		i = len(s.polls) - 1
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return append([]types.ProcessRecord(nil), s.polls[i]...), nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Interval = 5 * time.Millisecond
	return cfg
}

func rec(pid uint32, name string, bytes uint64) types.ProcessRecord {
	return types.ProcessRecord{PID: pid, RawName: name, MemoryBytes: bytes, Accessible: true}
}

func TestPollBuildsFrameAndDeltas(t *testing.T) {
	src := &scriptedSource{polls: [][]types.ProcessRecord{
		{rec(1, "foo.exe", 200*mb), rec(2, "foo.exe", 100*mb), {PID: 3, RawName: "bar.exe"}},
		{rec(1, "foo.exe", 250*mb), rec(2, "foo.exe", 100*mb), rec(4, "baz.exe", 10*mb)},
	}}
	s := NewSession(src, testConfig(), quietLogger())

	first, err := s.Poll()
	require.NoError(t, err)
	assert.Equal(t, types.Summary{Total: 3, Accessible: 2, Inaccessible: 1, AccessibleBytes: 300 * mb}, first.Summary)
	require.Len(t, first.Groups, 1)
	assert.Equal(t, "foo", first.Groups[0].Name)
	assert.Equal(t, 2, first.Groups[0].Instances)
	require.Len(t, first.Deltas, 1)
	assert.False(t, first.Deltas[0].Known)
	assert.Nil(t, first.Focus)
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{first.Records[0].PID, first.Records[1].PID, first.Records[2].PID})

	second, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, second.Deltas, 2)
	assert.Equal(t, "baz", second.Deltas[0].Name)
	assert.False(t, second.Deltas[0].Known)
	assert.Equal(t, "foo", second.Deltas[1].Name)
	assert.True(t, second.Deltas[1].Known)
	assert.Equal(t, int64(50*mb), second.Deltas[1].Change)
	require.NotNil(t, second.Focus)
	assert.Equal(t, "foo", second.Focus.Name)
}

func TestPollFailureKeepsBaseline(t *testing.T) {
	unavailable := fmt.Errorf("%w: boom", collector.ErrSnapshotUnavailable)
	src := &scriptedSource{
		polls: [][]types.ProcessRecord{{rec(1, "a", 100)}, nil, {rec(1, "a", 150)}},
		errs:  []error{nil, unavailable, nil},
	}
	s := NewSession(src, testConfig(), quietLogger())

	_, err := s.Poll()
	require.NoError(t, err)
	_, err = s.Poll()
	require.ErrorIs(t, err, collector.ErrSnapshotUnavailable)

	frame, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, frame.Deltas, 1)
	assert.True(t, frame.Deltas[0].Known)
	assert.Equal(t, int64(50), frame.Deltas[0].Change)
}

func TestPollAppliesFilter(t *testing.T) {
	src := &scriptedSource{polls: [][]types.ProcessRecord{
		{rec(2, "kworker/0:1", 0), rec(10, "nginx", 5*mb), rec(11, "postgres", 9*mb)},
	}}
	cfg := testConfig()
	cfg.NameFilter = "nginx"
	s := NewSession(src, cfg, quietLogger())

	frame, err := s.Poll()
	require.NoError(t, err)
	require.Len(t, frame.Records, 1)
	assert.Equal(t, uint32(10), frame.Records[0].PID)
	assert.Equal(t, 3, frame.Summary.Total)
}

func TestApplyResetsBaselineOnKeyChange(t *testing.T) {
	src := &scriptedSource{polls: [][]types.ProcessRecord{{rec(1, "App.exe", 10)}}}
	s := NewSession(src, testConfig(), quietLogger())

	_, err := s.Poll()
	require.NoError(t, err)
	frame, err := s.Poll()
	require.NoError(t, err)
	require.True(t, frame.Deltas[0].Known)

	cfg := s.Config()
	cfg.TopK = 3
	s.Apply(cfg)
	frame, err = s.Poll()
	require.NoError(t, err)
	assert.True(t, frame.Deltas[0].Known, "unrelated change must keep the baseline")

	cfg.GroupCase = "fold"
	s.Apply(cfg)
	frame, err = s.Poll()
	require.NoError(t, err)
	assert.Equal(t, "app", frame.Deltas[0].Name)
	assert.False(t, frame.Deltas[0].Known)
}

func TestApplyKeepsSourceOnBadKind(t *testing.T) {
	src := &scriptedSource{polls: [][]types.ProcessRecord{{rec(1, "a", 1)}}}
	s := NewSession(src, testConfig(), quietLogger())

	cfg := s.Config()
	cfg.Source = "wmi"
	s.Apply(cfg)
	assert.Equal(t, "gopsutil", s.Config().Source)
	_, err := s.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestRunRendersUntilCancelled(t *testing.T) {
	unavailable := fmt.Errorf("%w: boom", collector.ErrSnapshotUnavailable)
	src := &scriptedSource{
		polls: [][]types.ProcessRecord{{rec(1, "a", 1)}, nil, {rec(1, "a", 2)}},
		errs:  []error{nil, unavailable, nil},
	}
	s := NewSession(src, testConfig(), quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var frames []Frame
	render := func(f Frame) {
		frames = append(frames, f)
		if len(frames) == 2 {
			cancel()
		}
	}
	require.NoError(t, s.Run(ctx, render, nil))
	require.Len(t, frames, 2)
	assert.GreaterOrEqual(t, src.calls, 3, "failed poll should be skipped, not retried immediately")
	assert.True(t, frames[1].Deltas[0].Known)
	assert.Equal(t, int64(1), frames[1].Deltas[0].Change)
}

func TestRunAppliesUpdates(t *testing.T) {
	src := &scriptedSource{polls: [][]types.ProcessRecord{{rec(1, "a", 1)}}}
	s := NewSession(src, testConfig(), quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make(chan config.Config, 1)
	next := testConfig()
	next.TopK = 4
	updates <- next
	close(updates)

	render := func(f Frame) {
		if s.Config().TopK == 4 {
			cancel()
		}
	}
	require.NoError(t, s.Run(ctx, render, updates))
	assert.Equal(t, 4, s.Config().TopK)
}
