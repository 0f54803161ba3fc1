package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-docfill/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string // DOCFILL_CONFIG: config file name or path
	TemplatesDir string // DOCFILL_TEMPLATES_DIR: template lookup directory
	OutputDir    string // DOCFILL_OUTPUT_DIR: default output directory
	Renderer     string // DOCFILL_RENDERER: chrome or basic
	SofficeBin   string // DOCFILL_SOFFICE_BIN: LibreOffice executable
	Workers      int    // DOCFILL_WORKERS: batch workers
	LogLevel     string // DOCFILL_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid DOCFILL_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCFILL_CONFIG":        true,
	"DOCFILL_TEMPLATES_DIR": true,
	"DOCFILL_OUTPUT_DIR":    true,
	"DOCFILL_RENDERER":      true,
	"DOCFILL_SOFFICE_BIN":   true,
	"DOCFILL_WORKERS":       true,
	"DOCFILL_LOG_LEVEL":     true,
	"DOCFILL_CONTAINER":     true, // doctor: force container detection
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("DOCFILL_CONFIG"),
		TemplatesDir: os.Getenv("DOCFILL_TEMPLATES_DIR"),
		OutputDir:    os.Getenv("DOCFILL_OUTPUT_DIR"),
		Renderer:     strings.ToLower(os.Getenv("DOCFILL_RENDERER")),
		SofficeBin:   os.Getenv("DOCFILL_SOFFICE_BIN"),
		LogLevel:     strings.ToLower(os.Getenv("DOCFILL_LOG_LEVEL")),
	}

	if workers := os.Getenv("DOCFILL_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOCFILL_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOCFILL_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the config file.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via applyRenderFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.TemplatesDir != "" {
		cfg.Templates.Dir = env.TemplatesDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Renderer != "" {
		cfg.Renderer.Engine = env.Renderer
	}
	if env.SofficeBin != "" {
		cfg.Converter.Binary = env.SofficeBin
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
