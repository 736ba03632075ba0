package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/srodi/procwatch/pkg/collector"
	"github.com/srodi/procwatch/pkg/report"
	"github.com/srodi/procwatch/pkg/types"
)

const (
	defaultInterval = 2 * time.Second
	minInterval     = 100 * time.Millisecond
	defaultLogLevel = "info"
)

// Config holds the settings shared by every procwatch command.
type Config struct {
	Interval   time.Duration `yaml:"interval"`
	Source     string        `yaml:"source"`
	ProcRoot   string        `yaml:"proc_root"`
	Suffix     *string       `yaml:"executable_suffix"`
	GroupCase  string        `yaml:"group_case"`
	SortCase   string        `yaml:"sort_case"`
	TopK       int           `yaml:"topk"`
	HideKernel *bool         `yaml:"hide_kernel"`
	NameFilter string        `yaml:"name_filter"`
	EvictAfter int           `yaml:"evict_after"`
	ForceKill  bool          `yaml:"force_kill"`
	LogLevel   string        `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return normalize(Config{})
}

// Load reads a YAML file and fills unset or invalid fields with defaults.
// An empty path yields Default.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a normalized Config.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return normalize(cfg), nil
}

// Normalized fills unset or invalid fields of c with defaults. Callers that
// edit a loaded Config should normalize it again.
func (c Config) Normalized() Config {
	return normalize(c)
}

func normalize(cfg Config) Config {
	normalized := cfg

	if normalized.Interval <= 0 {
		normalized.Interval = defaultInterval
	} else if normalized.Interval < minInterval {
		normalized.Interval = minInterval
	}

	normalized.Source = strings.ToLower(strings.TrimSpace(normalized.Source))
	if normalized.Source != collector.KindProcfs {
		normalized.Source = collector.KindGopsutil
	}
	if strings.TrimSpace(normalized.ProcRoot) == "" {
		normalized.ProcRoot = "/proc"
	}

	if normalized.Suffix == nil {
		suffix := report.DefaultSuffix
		normalized.Suffix = &suffix
	}

	if _, err := report.ParseCasePolicy(normalized.GroupCase); err != nil {
		normalized.GroupCase = report.CasePreserve.String()
	}
	if _, err := report.ParseCasePolicy(normalized.SortCase); err != nil {
		normalized.SortCase = report.CaseFold.String()
	}

	if normalized.TopK <= 0 {
		normalized.TopK = types.DefaultTopK
	}
	if normalized.HideKernel == nil {
		hide := true
		normalized.HideKernel = &hide
	}
	if normalized.EvictAfter < 0 {
		normalized.EvictAfter = 0
	}
	normalized.NameFilter = strings.TrimSpace(normalized.NameFilter)

	if strings.TrimSpace(normalized.LogLevel) == "" {
		normalized.LogLevel = defaultLogLevel
	}
	return normalized
}

// GroupNamer is the namer used to key groups and deltas.
func (c Config) GroupNamer() report.Namer {
	policy, _ := report.ParseCasePolicy(c.GroupCase)
	return report.NewNamer(c.suffix(), policy)
}

// SortNamer is the namer used to order records and groups by name.
func (c Config) SortNamer() report.Namer {
	policy, err := report.ParseCasePolicy(c.SortCase)
	if err != nil {
		policy = report.CaseFold
	}
	return report.NewNamer(c.suffix(), policy)
}

// Filter returns the record filter described by the config.
func (c Config) Filter() report.FilterConfig {
	return report.FilterConfig{HideKernel: c.HideKernel, NameFilter: c.NameFilter}
}

func (c Config) suffix() string {
	if c.Suffix == nil {
		return report.DefaultSuffix
	}
	return *c.Suffix
}
