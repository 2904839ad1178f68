package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kbsite/internal/apperr"
	"github.com/starford/kbsite/internal/classify"
	"github.com/starford/kbsite/internal/engine"
	"github.com/starford/kbsite/internal/manifest"
	"github.com/starford/kbsite/internal/watch"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Source   SourceConfig      `yaml:"source"`
	Output   OutputConfig      `yaml:"output"`
	Manifest ManifestConfig    `yaml:"manifest"`
	Site     SiteConfig        `yaml:"site"`
	Watch    WatchConfig       `yaml:"watch"`
	Publish  PublishConfig     `yaml:"publish"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.Source, &c.Output, &c.Manifest, &c.Site, &c.Watch} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", apperr.ErrInvalidConfig, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SourceConfig locates the notes export.
type SourceConfig struct {
	NotesPath string `yaml:"notes_path"`
	// RemoveAfterSync deletes the export once a pass has completed.
	RemoveAfterSync bool `yaml:"remove_after_sync"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesPath, validation.Required),
	)
}

// OutputConfig holds the generated site location and branding.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	SiteTitle   string `yaml:"site_title"`
	Description string `yaml:"description"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.SiteTitle, validation.Required),
	)
}

// ManifestConfig selects where sync state is kept.
type ManifestConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Validate validates the manifest configuration.
// An empty driver is accepted and opens the JSON store.
func (c *ManifestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(manifest.DriverJSON, manifest.DriverSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// SiteConfig tunes what gets published.
type SiteConfig struct {
	Keywords    []string `yaml:"keywords"`
	RecentLimit int      `yaml:"recent_limit"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Keywords, validation.Required),
		validation.Field(&c.RecentLimit, validation.Required, validation.Min(1)),
	)
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// PublishConfig describes the upload target. It is validated only when
// publishing, so sync works without it.
type PublishConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
	Profile   string `yaml:"profile"`
}

// Validate validates the publish configuration.
func (c *PublishConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Bucket, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: publish: %w", apperr.ErrInvalidConfig, err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Source: SourceConfig{
			NotesPath: "./notes.json",
		},
		Output: OutputConfig{
			Dir:         "./site",
			SiteTitle:   "知識庫",
			Description: "個人筆記整理的知識庫",
		},
		Manifest: ManifestConfig{
			Driver: manifest.DriverJSON,
			Path:   "./sync-log.json",
		},
		Site: SiteConfig{
			Keywords:    append([]string(nil), classify.DefaultKeywords...),
			RecentLimit: engine.DefaultRecentLimit,
		},
		Watch: WatchConfig{
			Debounce: watch.DefaultDebounce,
		},
	}
}
