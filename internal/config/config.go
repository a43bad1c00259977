package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/domain"
)

// PaperCustom selects paper_width_cm and paper_height_cm instead of a preset.
const PaperCustom = "custom"

// TimezoneLocal and TimezoneVenue are the non-IANA schedule.timezone values.
const (
	TimezoneLocal = "local"
	TimezoneVenue = "venue"
)

type Config struct {
	Data     DataConfig     `toml:"data"`
	Database DatabaseConfig `toml:"database"`
	API      APIConfig      `toml:"api"`
	Layout   LayoutConfig   `toml:"layout"`
	Render   RenderConfig   `toml:"render"`
	Roster   RosterConfig   `toml:"roster"`
	Schedule ScheduleConfig `toml:"schedule"`
	Serve    ServeConfig    `toml:"serve"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DataConfig struct {
	ExportDir  string `toml:"export_dir"`
	ExportURL  string `toml:"export_url"`
	UseHistory bool   `toml:"use_history"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type APIConfig struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	UserAgent         string  `toml:"user_agent"`
}

type LayoutConfig struct {
	TagWidthCM    float64 `toml:"tag_width_cm"`
	TagHeightCM   float64 `toml:"tag_height_cm"`
	Paper         string  `toml:"paper"` // A4 | Letter | custom
	PaperWidthCM  float64 `toml:"paper_width_cm"`
	PaperHeightCM float64 `toml:"paper_height_cm"`
	Padding       string  `toml:"padding"` // none | row | page
}

type RenderConfig struct {
	TemplatePath        string `toml:"template_path"`
	ExperienceEmojiPath string `toml:"experience_emoji_path"`
	PeopleEmojiPath     string `toml:"people_emoji_path"`
	IndexEmojiPath      string `toml:"index_emoji_path"`
	OutputDir           string `toml:"output_dir"`
	PDF                 bool   `toml:"pdf"`
	ChromeBin           string `toml:"chrome_bin"`
}

type RosterConfig struct {
	MissingCountry string `toml:"missing_country"` // fail | drop
	IncludePending bool   `toml:"include_pending"`
	Locale         string `toml:"locale"`
}

type ScheduleConfig struct {
	Timezone string `toml:"timezone"` // local | venue | IANA name
}

type ServeConfig struct {
	Bind          string `toml:"bind"`
	APIEndpoint   string `toml:"api_endpoint"`
	MCPEndpoint   string `toml:"mcp_endpoint"`
	WatchTemplate bool   `toml:"watch_template"`
	CopyURL       bool   `toml:"copy_url"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func Default(dbPath, exportDir, outputDir string) Config {
	return Config{
		Data: DataConfig{
			ExportDir:  exportDir,
			ExportURL:  "https://www.worldcubeassociation.org/export/results/WCA_export.tsv.zip",
			UseHistory: true,
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		API: APIConfig{
			BaseURL:           "https://www.worldcubeassociation.org",
			TimeoutSeconds:    30,
			RequestsPerSecond: 2,
			UserAgent:         "nametag",
		},
		Layout: LayoutConfig{
			TagWidthCM:  domain.DefaultTagWidth,
			TagHeightCM: domain.DefaultTagHeight,
			Paper:       "A4",
			Padding:     string(domain.PadPage),
		},
		Render: RenderConfig{
			OutputDir: outputDir,
		},
		Roster: RosterConfig{
			MissingCountry: "fail",
			Locale:         "und",
		},
		Schedule: ScheduleConfig{
			Timezone: TimezoneLocal,
		},
		Serve: ServeConfig{
			Bind:          "127.0.0.1:8787",
			APIEndpoint:   "/api/v1",
			MCPEndpoint:   "/mcp",
			WatchTemplate: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".nametag/log",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Data.ExportDir) == "" {
		return errors.New("data.export_dir is required")
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must be >= 0, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must be >= 0, got %g", c.API.RequestsPerSecond)
	}

	if _, err := c.PageLayout(); err != nil {
		return err
	}
	if _, err := c.PadMode(); err != nil {
		return fmt.Errorf("invalid layout.padding: %w", err)
	}

	if _, err := c.MissingCountryPolicy(); err != nil {
		return fmt.Errorf("invalid roster.missing_country: %w", err)
	}
	if _, err := c.Locale(); err != nil {
		return err
	}
	if _, _, err := c.TimeLocation(); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// Paper resolves the configured paper preset or custom size.
func (c Config) Paper() (domain.Paper, error) {
	if strings.EqualFold(strings.TrimSpace(c.Layout.Paper), PaperCustom) {
		if c.Layout.PaperWidthCM <= 0 || c.Layout.PaperHeightCM <= 0 {
			return domain.Paper{}, errors.New("layout.paper_width_cm and layout.paper_height_cm are required for custom paper")
		}
		return domain.Paper{Name: PaperCustom, Width: c.Layout.PaperWidthCM, Height: c.Layout.PaperHeightCM}, nil
	}
	paper, err := domain.LookupPaper(c.Layout.Paper)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("invalid layout.paper: %w", err)
	}
	return paper, nil
}

// PageLayout combines tag and paper sizes.
func (c Config) PageLayout() (domain.Layout, error) {
	paper, err := c.Paper()
	if err != nil {
		return domain.Layout{}, err
	}
	layout, err := domain.NewLayout(c.Layout.TagWidthCM, c.Layout.TagHeightCM, paper)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("invalid layout: %w", err)
	}
	return layout, nil
}

// PadMode parses layout.padding.
func (c Config) PadMode() (domain.PadMode, error) {
	return domain.ParsePadMode(c.Layout.Padding)
}

// MissingCountryPolicy parses roster.missing_country.
func (c Config) MissingCountryPolicy() (app.MissingCountryPolicy, error) {
	return app.ParseMissingCountryPolicy(c.Roster.MissingCountry)
}

// Locale parses roster.locale as a BCP 47 tag.
func (c Config) Locale() (language.Tag, error) {
	raw := strings.TrimSpace(c.Roster.Locale)
	if raw == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, fmt.Errorf("invalid roster.locale: %q: %w", raw, err)
	}
	return tag, nil
}

// TimeLocation resolves schedule.timezone. The boolean reports venue mode.
func (c Config) TimeLocation() (*time.Location, bool, error) {
	raw := strings.TrimSpace(c.Schedule.Timezone)
	switch strings.ToLower(raw) {
	case "", TimezoneLocal:
		return time.Local, false, nil
	case TimezoneVenue:
		return time.Local, true, nil
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		return nil, false, fmt.Errorf("invalid schedule.timezone: %q: %w", raw, err)
	}
	return loc, false, nil
}

// APITimeout returns the HTTP timeout for API calls.
func (c Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
