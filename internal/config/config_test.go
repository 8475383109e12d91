package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_PartialFileIsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
listen: 0.0.0.0:9000
week_start: Monday
sources:
  users: ./testdata/users.json
colors:
  users:
    7: "#000000"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, "./testdata/users.json", cfg.Sources.Users)
	assert.Equal(t, "", cfg.Sources.Schedule)
	assert.Equal(t, 15, cfg.Sources.TimeoutSeconds)
	assert.Equal(t, map[int]string{7: "#000000"}, cfg.Colors.Users)
	assert.Equal(t, "#e6f7ff", cfg.Colors.Layer)
	assert.Equal(t, "#FFBF00", cfg.Colors.Override)
	assert.Equal(t, "#ccffcc", cfg.Colors.Final)
	assert.Equal(t, "month", cfg.View.Granularity)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestNormalize_UnknownWeekStartFallsBack(t *testing.T) {
	cfg := &Config{WeekStart: "friday"}
	cfg.Normalize()
	assert.Equal(t, "sunday", cfg.WeekStart)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		is      error
	}{
		{"defaults", func(*Config) {}, false, nil},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true, nil},
		{"bad anchor", func(c *Config) { c.View.AnchorDate = "10/01/2022" }, true, ErrInvalidDate},
		{"end before anchor", func(c *Config) { c.View.InitialEnd = "2022-09-01" }, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestAnchorAndInitialEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Asia/Seoul"
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	anchor, err := cfg.AnchorDate()
	require.NoError(t, err)
	assert.True(t, anchor.Equal(time.Date(2022, 10, 1, 0, 0, 0, 0, loc)))

	end, err := cfg.InitialEnd()
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2022, 10, 31, 0, 0, 0, 0, loc)))
}

func TestSnapshotURL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://127.0.0.1:8080/", cfg.SnapshotURL())

	cfg.Snapshot.URL = "http://example.test/board"
	assert.Equal(t, "http://example.test/board", cfg.SnapshotURL())
}

func TestSave_RejectsNil(t *testing.T) {
	assert.ErrorIs(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil), ErrNilConfig)
	assert.ErrorIs(t, Save("", DefaultConfig()), ErrEmptyPath)
}
