package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/procwatch/pkg/report"
	"github.com/srodi/procwatch/pkg/types"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "gopsutil", cfg.Source)
	assert.Equal(t, "/proc", cfg.ProcRoot)
	require.NotNil(t, cfg.Suffix)
	assert.Equal(t, ".exe", *cfg.Suffix)
	assert.Equal(t, "preserve", cfg.GroupCase)
	assert.Equal(t, "fold", cfg.SortCase)
	assert.Equal(t, types.DefaultTopK, cfg.TopK)
	require.NotNil(t, cfg.HideKernel)
	assert.True(t, *cfg.HideKernel)
	assert.Equal(t, 0, cfg.EvictAfter)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("  ")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseFullFile(t *testing.T) {
	cfg, err := Parse([]byte(`
interval: 5s
source: procfs
proc_root: /host/proc
executable_suffix: ""
group_case: fold
sort_case: preserve
topk: 7
hide_kernel: false
name_filter: " chrome "
evict_after: 30
force_kill: true
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, "procfs", cfg.Source)
	assert.Equal(t, "/host/proc", cfg.ProcRoot)
	require.NotNil(t, cfg.Suffix)
	assert.Equal(t, "", *cfg.Suffix)
	assert.Equal(t, 7, cfg.TopK)
	assert.False(t, *cfg.HideKernel)
	assert.Equal(t, "chrome", cfg.NameFilter)
	assert.Equal(t, 30, cfg.EvictAfter)
	assert.True(t, cfg.ForceKill)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Equal(t, report.CaseFold, cfg.GroupNamer().Case)
	assert.Equal(t, "", cfg.GroupNamer().Suffix)
	assert.Equal(t, report.CasePreserve, cfg.SortNamer().Case)
	assert.Equal(t, "chrome", cfg.Filter().NameFilter)
}

func TestParseNormalizesInvalidValues(t *testing.T) {
	cfg, err := Parse([]byte(`
interval: 1ms
source: wmi
group_case: shouty
sort_case: ""
topk: -1
evict_after: -4
`))
	require.NoError(t, err)
	assert.Equal(t, minInterval, cfg.Interval)
	assert.Equal(t, "gopsutil", cfg.Source)
	assert.Equal(t, "preserve", cfg.GroupCase)
	assert.Equal(t, "fold", cfg.SortCase)
	assert.Equal(t, types.DefaultTopK, cfg.TopK)
	assert.Equal(t, 0, cfg.EvictAfter)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("interval: [unterminated"))
	require.Error(t, err)
}

func TestWatchDeliversReloadedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "procwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topk: 3\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, quietLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("topk: 9\ninterval: 3s\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg, ok := <-updates:
			require.True(t, ok, "updates closed early")
			if cfg.TopK == 9 {
				assert.Equal(t, 3*time.Second, cfg.Interval)
				cancel()
				for range updates {
				}
				return
			}
		case <-deadline:
			t.Fatal("no reloaded config within 5s")
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "cfg.yaml"), quietLogger())
	require.Error(t, err)
}

func TestNormalizedAfterEdit(t *testing.T) {
	cfg := Default()
	cfg.Interval = 0
	cfg.Source = " PROCFS "
	cfg.NameFilter = "  ssh "
	got := cfg.Normalized()
	assert.Equal(t, 2*time.Second, got.Interval)
	assert.Equal(t, "procfs", got.Source)
	assert.Equal(t, "ssh", got.NameFilter)
}
