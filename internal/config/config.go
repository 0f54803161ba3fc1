package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docfill/internal/fileutil"
	"github.com/alnah/go-docfill/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name used under the user config directory.
const AppDir = "go-docfill"

// Field length limits.
const (
	MaxPathLength       = 4096 // PATH_MAX on Linux
	MaxMarkerLength     = 100  // Signature block marker word
	MaxNameLength       = 64   // Identifiers: list, iterator, field names
	MaxPageSizeLength   = 20   // "letter", "A4", "8.5in 11in"
	MaxPageMarginLength = 40   // CSS margin shorthand
	MaxBindings         = 32
)

// Renderer engines for the markup path.
const (
	RendererChrome = "chrome"
	RendererBasic  = "basic"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration for document generation.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Scratch   ScratchConfig   `yaml:"scratch"`
	Bindings  []BindingConfig `yaml:"bindings"`
	Page      PageConfig      `yaml:"page"`
	Assets    AssetsConfig    `yaml:"assets"`
	Converter ConverterConfig `yaml:"converter"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Output    OutputConfig    `yaml:"output"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Log       LogConfig       `yaml:"log"`
}

// TemplatesConfig defines where templates are looked up.
type TemplatesConfig struct {
	Dir             string `yaml:"dir"`             // Directory searched for template names (default: templates/docs)
	SignatureMarker string `yaml:"signatureMarker"` // Word opening the signature block (default: ELABORARON)
	BackgroundImage string `yaml:"backgroundImage"` // Page background next to HTML templates
}

// ScratchConfig defines where intermediate documents are written.
type ScratchConfig struct {
	Dir string `yaml:"dir"` // Empty = system temp dir
}

// BindingConfig ties an anchor token to the list that expands its row.
type BindingConfig struct {
	Anchor   string            `yaml:"anchor"`
	List     string            `yaml:"list"`
	Iterator string            `yaml:"iterator"`
	Fields   map[string]string `yaml:"fields"` // token -> item field
}

// PageConfig defines page settings for the markup path.
type PageConfig struct {
	Size   string `yaml:"size"`   // CSS page size (default: letter)
	Margin string `yaml:"margin"` // CSS margin shorthand (default: 2cm)
	Style  string `yaml:"style"`  // Page stylesheet name (default: page)
}

// AssetsConfig defines where custom page stylesheets are looked up.
type AssetsConfig struct {
	Path string `yaml:"path"` // Directory holding styles/<name>.css (empty = embedded only)
}

// ConverterConfig defines the office converter used on the structured path.
type ConverterConfig struct {
	Enabled *bool         `yaml:"enabled"` // nil = enabled
	Binary  string        `yaml:"binary"`  // Empty = soffice on PATH
	Timeout time.Duration `yaml:"timeout"` // Zero = library default
}

// RendererConfig defines the fixed-layout renderer used on the markup path.
type RendererConfig struct {
	Engine  string        `yaml:"engine"`  // "chrome" or "basic" (default: chrome)
	Timeout time.Duration `yaml:"timeout"` // Zero = library default
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = current directory)
	NativeOnly bool   `yaml:"nativeOnly"` // Skip conversion, deliver DOCX/HTML
}

// LedgerConfig defines the generation history database.
type LedgerConfig struct {
	Path string `yaml:"path"` // Empty = no ledger
}

// LogConfig defines structured logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // text or json (default: text)
}

// ConverterEnabled reports whether office conversion is enabled.
func (c *Config) ConverterEnabled() bool {
	return c.Converter.Enabled == nil || *c.Converter.Enabled
}

// Validate checks field lengths and enum values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., API adapters, library users).
func (c *Config) Validate() error {
	paths := []struct{ name, value string }{
		{"templates.dir", c.Templates.Dir},
		{"templates.backgroundImage", c.Templates.BackgroundImage},
		{"scratch.dir", c.Scratch.Dir},
		{"assets.path", c.Assets.Path},
		{"converter.binary", c.Converter.Binary},
		{"output.defaultDir", c.Output.DefaultDir},
		{"ledger.path", c.Ledger.Path},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("templates.signatureMarker", c.Templates.SignatureMarker, MaxMarkerLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Templates.BackgroundImage, "/\\") {
		return fmt.Errorf("%w: templates.backgroundImage must be a file name, got %q", ErrInvalidValue, c.Templates.BackgroundImage)
	}

	if len(c.Bindings) > MaxBindings {
		return fmt.Errorf("%w: bindings (%d entries, max %d)", ErrInvalidValue, len(c.Bindings), MaxBindings)
	}
	for i, b := range c.Bindings {
		if err := b.validate(fmt.Sprintf("bindings[%d]", i)); err != nil {
			return err
		}
	}

	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.margin", c.Page.Margin, MaxPageMarginLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.style", c.Page.Style, MaxNameLength); err != nil {
		return err
	}
	if fileutil.IsFilePath(c.Page.Style) {
		return fmt.Errorf("%w: page.style must be a style name, got %q", ErrInvalidValue, c.Page.Style)
	}
	if strings.ContainsAny(c.Page.Size+c.Page.Margin, "{};<>") {
		return fmt.Errorf("%w: page settings must not contain CSS delimiters", ErrInvalidValue)
	}

	if c.Converter.Timeout < 0 {
		return fmt.Errorf("%w: converter.timeout must not be negative", ErrInvalidValue)
	}
	if c.Renderer.Timeout < 0 {
		return fmt.Errorf("%w: renderer.timeout must not be negative", ErrInvalidValue)
	}
	switch strings.ToLower(c.Renderer.Engine) {
	case "", RendererChrome, RendererBasic:
	default:
		return fmt.Errorf("%w: renderer.engine %q (must be chrome or basic)", ErrInvalidValue, c.Renderer.Engine)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

func (b BindingConfig) validate(prefix string) error {
	names := []struct{ field, value string }{
		{"anchor", b.Anchor},
		{"list", b.List},
		{"iterator", b.Iterator},
	}
	for _, n := range names {
		if n.value == "" {
			return fmt.Errorf("%w: %s.%s is required", ErrInvalidValue, prefix, n.field)
		}
		if err := validateFieldLength(prefix+"."+n.field, n.value, MaxNameLength); err != nil {
			return err
		}
	}
	for token, field := range b.Fields {
		if err := validateFieldLength(prefix+".fields", token, MaxNameLength); err != nil {
			return err
		}
		if err := validateFieldLength(prefix+".fields."+token, field, MaxNameLength); err != nil {
			return err
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given:
// library defaults everywhere, no ledger.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-docfill/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
