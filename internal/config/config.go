package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"threemonthcal/internal/fsutil"
	"threemonthcal/internal/grid"
	"threemonthcal/internal/layout"
	"threemonthcal/internal/render"
	"threemonthcal/internal/theme"
)

// NOTE: This file provides the configuration model and YAML load/save,
// including first-run config creation with 0600 permissions. Enum fields are
// kept as strings in the file and normalized on load so that older or
// hand-edited configs still behave.

// ColorsConfig holds the optional hex overrides, "RRGGBB" or "RRGGBBAA"
// with or without '#'. Empty keeps the preset color.
type ColorsConfig struct {
	Weekday  string `yaml:"weekday" json:"weekday"`
	Sunday   string `yaml:"sunday" json:"sunday"`
	Saturday string `yaml:"saturday" json:"saturday"`
	Holiday  string `yaml:"holiday" json:"holiday"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the calendar zone (e.g. "Asia/Tokyo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first column of the grid. Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// HolidayURL overrides the default holiday feed. Empty uses the default.
	HolidayURL string `yaml:"holiday_url" json:"holiday_url"`

	// ColorPreset is one of classic, cool, warm, mono.
	ColorPreset string       `yaml:"color_preset" json:"color_preset"`
	Colors      ColorsConfig `yaml:"colors" json:"colors"`

	// Appearance is light or dark; it only changes the classic weekday color.
	Appearance string `yaml:"appearance" json:"appearance"`

	// OnClick is none, calendar_app or holiday_feed.
	OnClick string `yaml:"on_click" json:"on_click"`

	// MonthNameStyle / WeekdayNameStyle are auto, full or short.
	MonthNameStyle   string `yaml:"month_name_style" json:"month_name_style"`
	WeekdayNameStyle string `yaml:"weekday_name_style" json:"weekday_name_style"`

	// Size is the default frame for rendering: a size class name
	// (medium, large, tall, small) or "WxH" in points.
	Size string `yaml:"size" json:"size"`

	// RefreshCron is a cron-style schedule string for the refresh cycle.
	// The default runs at local midnight.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir is where the per-year holiday records live.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// LogLevel is debug, info or error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTimezone    = "Asia/Tokyo"
	defaultRefreshCron = "0 0 * * *"
	defaultCacheDir    = "/var/lib/threemonthcal/holiday-cache"
	defaultSize        = "medium"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:           defaultListen,
		Timezone:         defaultTimezone,
		WeekStart:        grid.Sunday.String(),
		HolidayURL:       "",
		ColorPreset:      theme.Classic.String(),
		Appearance:       theme.Light.String(),
		OnClick:          render.ClickNone.String(),
		MonthNameStyle:   grid.NameAuto.String(),
		WeekdayNameStyle: grid.NameAuto.String(),
		Size:             defaultSize,
		RefreshCron:      defaultRefreshCron,
		CacheDir:         defaultCacheDir,
		LogLevel:         "info",
		BasicAuth:        nil,
	}
}

// Normalize fills in missing values and replaces unknown enum values with
// their defaults. Hex color overrides are left as written; bad ones are
// ignored at render time.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}

	ws, _ := grid.ParseWeekStart(c.WeekStart)
	c.WeekStart = ws.String()

	preset, _ := theme.ParsePreset(c.ColorPreset)
	c.ColorPreset = preset.String()

	appearance, _ := theme.ParseAppearance(c.Appearance)
	c.Appearance = appearance.String()

	click, _ := render.ParseClickAction(c.OnClick)
	c.OnClick = click.String()

	monthStyle, _ := grid.ParseNameStyle(c.MonthNameStyle)
	c.MonthNameStyle = monthStyle.String()
	weekdayStyle, _ := grid.ParseNameStyle(c.WeekdayNameStyle)
	c.WeekdayNameStyle = weekdayStyle.String()

	if _, _, ok := ParseSize(c.Size); !ok {
		c.Size = defaultSize
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		c.LogLevel = "info"
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RenderOptions maps the display settings onto render options. FeedURL is
// left for the caller, which knows how the override resolves.
func (c *Config) RenderOptions() render.Options {
	ws, _ := grid.ParseWeekStart(c.WeekStart)
	monthStyle, _ := grid.ParseNameStyle(c.MonthNameStyle)
	weekdayStyle, _ := grid.ParseNameStyle(c.WeekdayNameStyle)
	preset, _ := theme.ParsePreset(c.ColorPreset)
	appearance, _ := theme.ParseAppearance(c.Appearance)
	click, _ := render.ParseClickAction(c.OnClick)

	return render.Options{
		WeekStart:        ws,
		MonthNameStyle:   monthStyle,
		WeekdayNameStyle: weekdayStyle,
		Preset:           preset,
		Overrides: theme.Overrides{
			Weekday:  c.Colors.Weekday,
			Sunday:   c.Colors.Sunday,
			Saturday: c.Colors.Saturday,
			Holiday:  c.Colors.Holiday,
		},
		Appearance: appearance,
		Click:      click,
	}
}

// ParseSize reads a frame: a class name, which takes the nominal frame
// of that class, or "WxH", which is classified.
func ParseSize(s string) (layout.SizeClass, layout.Size, bool) {
	if class, ok := layout.ParseSizeClass(s); ok {
		return class, layout.NominalSize(class), true
	}
	if size, ok := layout.ParseSize(s); ok {
		return layout.Classify(size), size, true
	}
	return layout.Small, layout.Size{}, false
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
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
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save normalizes cfg and writes it atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o600)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
