package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/postdex/internal/index"
	"github.com/starford/postdex/internal/scheduler"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Posts   PostsConfig       `yaml:"posts"`
	Refresh RefreshConfig     `yaml:"refresh"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Posts.Validate(); err != nil {
		return err
	}
	return c.Refresh.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// PostsConfig describes the document tree.
type PostsConfig struct {
	Root      string `yaml:"root"`
	Extension string `yaml:"extension"`
	// IndexPath is relative to Root.
	IndexPath string `yaml:"index_path"`
}

// Validate validates the posts configuration.
func (c *PostsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.By(extension)),
		validation.Field(&c.IndexPath, validation.Required, validation.By(relativePath)),
	)
}

func extension(v any) error {
	s, _ := v.(string)
	if !strings.HasPrefix(s, ".") || len(s) < 2 || strings.ContainsAny(s, `/\`) {
		return errors.New("must look like .md")
	}
	return nil
}

func relativePath(v any) error {
	s, _ := v.(string)
	cleaned := filepath.Clean(filepath.FromSlash(s))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return errors.New("must be a path inside posts.root")
	}
	return nil
}

// RefreshConfig controls when the index is rebuilt besides explicit requests.
type RefreshConfig struct {
	OnStart  bool          `yaml:"on_start"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
	// Schedule is a cron expression; empty disables scheduled rebuilds.
	Schedule string `yaml:"schedule"`
}

// Validate validates the refresh configuration.
func (c *RefreshConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
		validation.Field(&c.Schedule, validation.By(cronSpec)),
	)
}

func cronSpec(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	return scheduler.Validate(s)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 1313,
			},
		},
		Posts: PostsConfig{
			Root:      "./posts",
			Extension: ".md",
			IndexPath: "static/index.json",
		},
		Refresh: RefreshConfig{
			OnStart:  true,
			Debounce: index.DefaultDebounce,
		},
	}
}
