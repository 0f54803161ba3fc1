package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Templates.Dir != "" {
		t.Errorf("Templates.Dir = %q, want empty", cfg.Templates.Dir)
	}
	if cfg.Output.NativeOnly {
		t.Error("Output.NativeOnly = true, want false")
	}
	if !cfg.ConverterEnabled() {
		t.Error("ConverterEnabled() = false, want true when unset")
	}
	if cfg.Ledger.Path != "" {
		t.Errorf("Ledger.Path = %q, want empty", cfg.Ledger.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit is invalid", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("test", tt.value, tt.maxLength)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error should wrap ErrFieldTooLong, got %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	disabled := false

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "full valid config",
			cfg: Config{
				Templates: TemplatesConfig{Dir: "templates/docs", SignatureMarker: "ELABORARON", BackgroundImage: "fondo.jpg"},
				Bindings: []BindingConfig{{
					Anchor: "actividad", List: "actividades_list", Iterator: "a",
					Fields: map[string]string{"horas": "horas"},
				}},
				Page:      PageConfig{Size: "A4", Margin: "1.5cm", Style: "carta"},
				Assets:    AssetsConfig{Path: "/srv/docfill/assets"},
				Converter: ConverterConfig{Enabled: &disabled, Timeout: time.Minute},
				Renderer:  RendererConfig{Engine: "basic"},
				Log:       LogConfig{Level: "debug", Format: "json"},
			},
		},
		{
			name:    "background image with separator",
			cfg:     Config{Templates: TemplatesConfig{BackgroundImage: "../secret.jpg"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "binding missing list",
			cfg:     Config{Bindings: []BindingConfig{{Anchor: "actividad", Iterator: "a"}}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "binding field too long",
			cfg:     Config{Bindings: []BindingConfig{{Anchor: "a", List: "l", Iterator: "i", Fields: map[string]string{"x": strings.Repeat("f", MaxNameLength+1)}}}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "page style as path",
			cfg:     Config{Page: PageConfig{Style: "../styles/carta"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "page style too long",
			cfg:     Config{Page: PageConfig{Style: strings.Repeat("s", MaxNameLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "assets path too long",
			cfg:     Config{Assets: AssetsConfig{Path: strings.Repeat("a", MaxPathLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "page size with CSS delimiter",
			cfg:     Config{Page: PageConfig{Size: "A4; } body {"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown renderer",
			cfg:     Config{Renderer: RendererConfig{Engine: "wkhtmltopdf"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative converter timeout",
			cfg:     Config{Converter: ConverterConfig{Timeout: -time.Second}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown log level",
			cfg:     Config{Log: LogConfig{Level: "trace"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown log format",
			cfg:     Config{Log: LogConfig{Format: "xml"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "marker too long",
			cfg:     Config{Templates: TemplatesConfig{SignatureMarker: strings.Repeat("X", MaxMarkerLength+1)}},
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "test.yaml")
		content := `templates:
  dir: "/srv/templates"
  signatureMarker: "FIRMAS"
bindings:
  - anchor: actividad
    list: actividades_list
    iterator: a
    fields:
      horas: horas
converter:
  enabled: false
  timeout: 90s
renderer:
  engine: basic
output:
  nativeOnly: true
ledger:
  path: "/var/lib/docfill/ledger.db"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Templates.Dir != "/srv/templates" {
			t.Errorf("Templates.Dir = %q, want /srv/templates", cfg.Templates.Dir)
		}
		if cfg.Templates.SignatureMarker != "FIRMAS" {
			t.Errorf("Templates.SignatureMarker = %q, want FIRMAS", cfg.Templates.SignatureMarker)
		}
		if len(cfg.Bindings) != 1 || cfg.Bindings[0].Fields["horas"] != "horas" {
			t.Errorf("Bindings = %+v", cfg.Bindings)
		}
		if cfg.ConverterEnabled() {
			t.Error("ConverterEnabled() = true, want false")
		}
		if cfg.Converter.Timeout != 90*time.Second {
			t.Errorf("Converter.Timeout = %v, want 90s", cfg.Converter.Timeout)
		}
		if cfg.Renderer.Engine != RendererBasic {
			t.Errorf("Renderer.Engine = %q, want basic", cfg.Renderer.Engine)
		}
		if !cfg.Output.NativeOnly {
			t.Error("Output.NativeOnly = false, want true")
		}
		if cfg.Ledger.Path != "/var/lib/docfill/ledger.db" {
			t.Errorf("Ledger.Path = %q", cfg.Ledger.Path)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("templates: [unclosed"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "unknown.yaml")
		content := "templates:\n  dir: x\nunknownField: \"should fail\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(configPath, []byte("renderer:\n  engine: prince\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("config name not found lists searched paths", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		_, err := LoadConfig("missing-docfill-config")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "missing-docfill-config.yaml") {
			t.Errorf("error = %q, want searched path in message", err)
		}
	})

	t.Run("config name found in current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		if err := os.WriteFile(filepath.Join(dir, "anexos.yml"), []byte("page:\n  size: A4\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig("anexos")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Page.Size != "A4" {
			t.Errorf("Page.Size = %q, want A4", cfg.Page.Size)
		}
	})
}
