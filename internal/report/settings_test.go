package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playsift/levelscope/internal/report"
)

func TestDefaultSettings(t *testing.T) {
	s := report.DefaultSettings(report.TopSuccessful)
	assert.Equal(t, "Score", s.SortColumn)
	assert.Equal(t, "#4472C4", s.HeaderColor)

	s = report.DefaultSettings(report.ChurnTopUnsuccessful)
	assert.Equal(t, "3 Days Churn", s.SortColumn)

	s = report.DefaultSettings(report.ABSignificant)
	assert.Equal(t, "Score", s.FilterColumn)
}

func TestLoadSettingsMissingFileFallsBack(t *testing.T) {
	s, err := report.LoadSettings(t.TempDir(), report.TopSuccessful)
	require.NoError(t, err)
	assert.Equal(t, report.DefaultSettings(report.TopSuccessful), s)
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := report.DefaultSettings(report.Regional)
	in.MinUsers = 250
	in.Limit = 10
	in.RenameColumns = map[string]string{"Range Start": "From"}
	in.HideColumns = []string{"Owner"}
	in.ColumnOrder = []string{"Range Start", "Range End"}

	require.NoError(t, report.SaveSettings(dir, report.Regional, in))
	out, err := report.LoadSettings(dir, report.Regional)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadSettingsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, report.Regional+".yaml")
	require.NoError(t, os.WriteFile(path, []byte("{invalid: [yaml"), 0o644))
	_, err := report.LoadSettings(dir, report.Regional)
	assert.Error(t, err)
}
