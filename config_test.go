package corkboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	table := cfg.ZoomTable()
	require.Len(t, table, 30)
	assert.Equal(t, 0.1, table[0])
	assert.Equal(t, 3.0, table[len(table)-1])
	assert.Equal(t, 1.0, table[cfg.DefaultZoomIndex()])
	assert.Equal(t, 9, cfg.DefaultZoomIndex())
	for i := 1; i < len(table); i++ {
		assert.Greater(t, table[i], table[i-1], "table must ascend")
	}
	assert.Equal(t, ModCtrl, cfg.Modifier())
	assert.Equal(t, SizeMedium, cfg.DefaultSizeClass())
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corkboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
zoom:
  min: 0.5
  max: 2.0
  step: 0.25
  default: 1.0
card:
  width: 160
  height: 100
  color: "#A0D8FF"
drag_modifier: Shift
size_class: large
recent_limit: 5
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}, cfg.ZoomTable())
	assert.Equal(t, 2, cfg.DefaultZoomIndex())
	assert.Equal(t, ModShift, cfg.Modifier())
	assert.Equal(t, SizeLarge, cfg.DefaultSizeClass())
	assert.Equal(t, "#a0d8ff", cfg.Card.Color)
	assert.Equal(t, 5, cfg.RecentLimit)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1280.0, cfg.Frame.Width)
}

func TestLoadConfigReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
zoom:
  min: 2
  max: 1
card:
  color: yellow
drag_modifier: hyper
log_level: loud
`), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "zoom.max")
	assert.Contains(t, msg, "card.color")
	assert.Contains(t, msg, "dragmodifier")
	assert.Contains(t, msg, "loglevel")
	assert.Contains(t, msg, "zoom.default")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, "boards"), expandHome("~/boards"))
	assert.Equal(t, "/tmp/boards", expandHome("/tmp/boards"))
}
