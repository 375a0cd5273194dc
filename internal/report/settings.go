package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings configures a single report generation call. The pipeline treats
// it as read-only input; nothing here is ever written back.
type Settings struct {
	// SortColumn overrides the generator's default sort metric.
	SortColumn string `yaml:"sort_column"`
	// SortOrder is "asc" or "desc"; empty keeps the generator default.
	SortOrder string `yaml:"sort_order"`
	// FilterColumn names the metric a filtering view applies its
	// threshold to.
	FilterColumn string `yaml:"filter_column"`
	// FilterThreshold overrides the metric's built-in significance
	// threshold when > 0.
	FilterThreshold float64 `yaml:"filter_threshold"`
	// MinUsers drops rows whose user count is below the cutoff.
	MinUsers int `yaml:"min_users"`
	// Limit truncates the output to the top N rows; 0 means all.
	Limit int `yaml:"limit"`

	// Presentation hints consumed by the renderers, not the generators.
	HeaderColor   string            `yaml:"header_color"`
	RenameColumns map[string]string `yaml:"rename_columns"`
	HideColumns   []string          `yaml:"hide_columns"`
	ColumnOrder   []string          `yaml:"column_order"`
}

// DefaultSettings returns the documented defaults for a report.
func DefaultSettings(name string) Settings {
	s := Settings{HeaderColor: "#4472C4"}
	switch name {
	case TopUnsuccessful, TopSuccessful:
		s.SortColumn = "Score"
	case ChurnTopUnsuccessful, ChurnTopSuccessful:
		s.SortColumn = "3 Days Churn"
	case ABSignificant:
		s.FilterColumn = "Score"
	}
	return s
}

// LoadSettings reads <dir>/<name>.yaml, falling back to defaults when the
// file does not exist. Malformed files are an error: settings are operator
// input, not export data, so the degraded-output policy does not apply.
func LoadSettings(dir, name string) (Settings, error) {
	s := DefaultSettings(name)
	if dir == "" {
		return s, nil
	}
	path := filepath.Join(dir, name+".yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes a settings file, creating the directory if needed.
func SaveSettings(dir, name string, s Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir settings dir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".yaml"), b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
