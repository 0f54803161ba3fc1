package main

// Notes:
// - Uses t.Setenv, so tests here do not call t.Parallel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alnah/go-docfill/internal/config"
)

func TestLoadEnvConfig(t *testing.T) {
	clearDocfillEnv(t)
	t.Setenv("DOCFILL_CONFIG", "work")
	t.Setenv("DOCFILL_TEMPLATES_DIR", "/srv/plantillas")
	t.Setenv("DOCFILL_OUTPUT_DIR", "/srv/salida")
	t.Setenv("DOCFILL_RENDERER", "Basic")
	t.Setenv("DOCFILL_SOFFICE_BIN", "/opt/libreoffice/program/soffice")
	t.Setenv("DOCFILL_WORKERS", "3")
	t.Setenv("DOCFILL_LOG_LEVEL", "DEBUG")

	got := loadEnvConfig()
	want := envConfig{
		ConfigPath:   "work",
		TemplatesDir: "/srv/plantillas",
		OutputDir:    "/srv/salida",
		Renderer:     "basic",
		SofficeBin:   "/opt/libreoffice/program/soffice",
		Workers:      3,
		LogLevel:     "debug",
	}
	if *got != want {
		t.Errorf("loadEnvConfig() = %+v, want %+v", *got, want)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	for _, v := range []string{"0", "-2", "many"} {
		clearDocfillEnv(t)
		t.Setenv("DOCFILL_WORKERS", v)
		if got := loadEnvConfig().Workers; got != 0 {
			t.Errorf("DOCFILL_WORKERS=%q gives %d, want 0", v, got)
		}
	}
}

func TestApplyEnvConfig(t *testing.T) {
	cfg := &config.Config{
		Templates: config.TemplatesConfig{Dir: "from-file"},
		Renderer:  config.RendererConfig{Engine: "chrome"},
		Log:       config.LogConfig{Level: "info"},
	}

	applyEnvConfig(&envConfig{}, cfg)
	if cfg.Templates.Dir != "from-file" || cfg.Renderer.Engine != "chrome" {
		t.Fatalf("empty env changed config: %+v", cfg)
	}

	applyEnvConfig(&envConfig{
		TemplatesDir: "from-env",
		OutputDir:    "out",
		Renderer:     "basic",
		SofficeBin:   "lo",
		LogLevel:     "warn",
	}, cfg)
	if cfg.Templates.Dir != "from-env" {
		t.Errorf("Templates.Dir = %q", cfg.Templates.Dir)
	}
	if cfg.Output.DefaultDir != "out" {
		t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
	}
	if cfg.Renderer.Engine != "basic" {
		t.Errorf("Renderer.Engine = %q", cfg.Renderer.Engine)
	}
	if cfg.Converter.Binary != "lo" {
		t.Errorf("Converter.Binary = %q", cfg.Converter.Binary)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestWarnUnknownEnvVars(t *testing.T) {
	clearDocfillEnv(t)
	t.Setenv("DOCFILL_TEMPLATE_DIR", "typo")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	if !strings.Contains(buf.String(), "DOCFILL_TEMPLATE_DIR") {
		t.Errorf("expected warning for DOCFILL_TEMPLATE_DIR, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "DOCFILL_TEMPLATES_DIR") {
		t.Errorf("known variable reported: %q", buf.String())
	}
}
