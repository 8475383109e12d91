package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of anchor / initial-end dates in the config file.
const DateLayout = "2006-01-02"

var (
	ErrEmptyPath   = errors.New("config path is empty")
	ErrNilConfig   = errors.New("config is nil")
	ErrInvalidDate = errors.New("invalid date")
)

// SourcesConfig points at the two schedule resources.
type SourcesConfig struct {
	// Users is the location of the users resource ({"users": [...]}).
	// http(s):// URLs, file:// URLs and bare file paths are accepted.
	Users string `yaml:"users" json:"users"`
	// Schedule is the location of the layered schedule document.
	Schedule string `yaml:"schedule" json:"schedule"`
	// TimeoutSeconds bounds a single fetch.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// ViewConfig describes the initial window of a freshly mounted timeline.
type ViewConfig struct {
	// AnchorDate is the fixed session anchor used when the granularity changes
	// while the "today" control is not selected.
	AnchorDate string `yaml:"anchor_date" json:"anchor_date"`
	// InitialEnd is the end of the window shown at mount time.
	InitialEnd string `yaml:"initial_end" json:"initial_end"`
	// Granularity is the initial granularity (day, 2-day, week, 2-week, month).
	Granularity string `yaml:"granularity" json:"granularity"`
}

// ColorsConfig is the static user → color table plus per-source fallbacks.
type ColorsConfig struct {
	Users    map[int]string `yaml:"users" json:"users"`
	Layer    string         `yaml:"layer" json:"layer"`
	Override string         `yaml:"override" json:"override"`
	Final    string         `yaml:"final" json:"final"`
}

// SnapshotConfig controls the headless PNG capture of the web timeline.
type SnapshotConfig struct {
	// Cron is a cron-style schedule ("*/15 * * * *"). Empty disables the
	// periodic capture; one-shot capture is still available from the CLI.
	Cron string `yaml:"cron" json:"cron"`
	// URL is the page to capture. Defaults to http://{listen}/.
	URL            string `yaml:"url" json:"url"`
	Output         string `yaml:"output" json:"output"`
	Width          int    `yaml:"width" json:"width"`
	Height         int    `yaml:"height" json:"height"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// LogConfig configures internal/log.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	// File receives log output in TUI mode, where stderr belongs to the screen.
	File string `yaml:"file" json:"file"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone in which dates are interpreted and
	// windows are aligned (e.g. "Asia/Seoul"). "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday starts week / 2-week windows.
	// Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	Sources  SourcesConfig  `yaml:"sources" json:"sources"`
	View     ViewConfig     `yaml:"view" json:"view"`
	Colors   ColorsConfig   `yaml:"colors" json:"colors"`
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`
	Log      LogConfig      `yaml:"log" json:"log"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen         = "127.0.0.1:8080"
	defaultTimezone       = "UTC"
	defaultWeekStart      = "sunday"
	defaultAnchorDate     = "2022-10-01"
	defaultInitialEnd     = "2022-10-31"
	defaultGranularity    = "month"
	defaultFetchTimeout   = 15
	defaultSnapshotOutput = "./cache/preview.png"
	defaultSnapshotWidth  = 1400
	defaultSnapshotHeight = 800
	defaultCaptureTimeout = 30
)

// DefaultUserColors is the built-in user color table.
func DefaultUserColors() map[int]string {
	return map[int]string{
		23: "#FFBF00",
		24: "#93C572",
		27: "#FF5733",
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    defaultListen,
		Timezone:  defaultTimezone,
		WeekStart: defaultWeekStart,
		Sources: SourcesConfig{
			Users:          "http://127.0.0.1:3000/users.json",
			Schedule:       "http://127.0.0.1:3000/data.json",
			TimeoutSeconds: defaultFetchTimeout,
		},
		View: ViewConfig{
			AnchorDate:  defaultAnchorDate,
			InitialEnd:  defaultInitialEnd,
			Granularity: defaultGranularity,
		},
		Colors: ColorsConfig{
			Users:    DefaultUserColors(),
			Layer:    "#e6f7ff",
			Override: "#FFBF00",
			Final:    "#ccffcc",
		},
		Snapshot: SnapshotConfig{
			Output:         defaultSnapshotOutput,
			Width:          defaultSnapshotWidth,
			Height:         defaultSnapshotHeight,
			TimeoutSeconds: defaultCaptureTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	// 알 수 없는 값은 sunday 로 되돌린다.
	switch strings.ToLower(c.WeekStart) {
	case "monday":
		c.WeekStart = "monday"
	default:
		c.WeekStart = defaultWeekStart
	}

	if c.Sources.TimeoutSeconds <= 0 {
		c.Sources.TimeoutSeconds = defaultFetchTimeout
	}

	if c.View.AnchorDate == "" {
		c.View.AnchorDate = def.View.AnchorDate
	}
	if c.View.InitialEnd == "" {
		c.View.InitialEnd = def.View.InitialEnd
	}
	if c.View.Granularity == "" {
		c.View.Granularity = def.View.Granularity
	}

	// An explicit empty map disables per-user colors; only a missing table
	// falls back to the built-in one.
	if c.Colors.Users == nil {
		c.Colors.Users = DefaultUserColors()
	}
	if c.Colors.Layer == "" {
		c.Colors.Layer = def.Colors.Layer
	}
	if c.Colors.Override == "" {
		c.Colors.Override = def.Colors.Override
	}
	if c.Colors.Final == "" {
		c.Colors.Final = def.Colors.Final
	}

	if c.Snapshot.Output == "" {
		c.Snapshot.Output = defaultSnapshotOutput
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = defaultSnapshotWidth
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = defaultSnapshotHeight
	}
	if c.Snapshot.TimeoutSeconds <= 0 {
		c.Snapshot.TimeoutSeconds = defaultCaptureTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	anchor, err := c.AnchorDate()
	if err != nil {
		return err
	}
	end, err := c.InitialEnd()
	if err != nil {
		return err
	}
	if end.Before(anchor) {
		return goerr.New("view.initial_end is before view.anchor_date",
			goerr.V("anchor_date", c.View.AnchorDate),
			goerr.V("initial_end", c.View.InitialEnd))
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid timezone", goerr.V("timezone", c.Timezone))
	}
	return loc, nil
}

// AnchorDate returns view.anchor_date at midnight in the configured zone.
func (c *Config) AnchorDate() (time.Time, error) {
	return c.parseDate("view.anchor_date", c.View.AnchorDate)
}

// InitialEnd returns view.initial_end at midnight in the configured zone.
func (c *Config) InitialEnd() (time.Time, error) {
	return c.parseDate("view.initial_end", c.View.InitialEnd)
}

func (c *Config) parseDate(field, value string) (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrInvalidDate, fmt.Sprintf("%s must be YYYY-MM-DD", field),
			goerr.V("value", value), goerr.V("cause", err.Error()))
	}
	return t, nil
}

// FetchTimeout returns sources.timeout_seconds as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// SnapshotURL returns the page captured by the snapshot job.
func (c *Config) SnapshotURL() string {
	if c.Snapshot.URL != "" {
		return c.Snapshot.URL
	}
	return "http://" + c.Listen + "/"
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, goerr.Wrap(err, "failed to read config", goerr.V("path", path))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config", goerr.V("path", path))
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return ErrNilConfig
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".schedview-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
