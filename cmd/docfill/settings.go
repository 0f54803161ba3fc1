package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	docfill "github.com/alnah/go-docfill"
	"github.com/alnah/go-docfill/internal/config"
	"github.com/alnah/go-docfill/internal/hints"
	"github.com/alnah/go-docfill/internal/pipeline"
)

// loadConfig resolves the configuration for a command.
// Source: --config, else DOCFILL_CONFIG, else env.Config.
// Environment overrides are applied on top.
func loadConfig(flagPath string, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig()

	name := flagPath
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(configSearchPaths(name)))
			}
			return nil, nil, err
		}
		cfg = loaded
	} else {
		base := env.Config
		if base == nil {
			base = config.DefaultConfig()
		}
		copied := *base
		cfg = &copied
	}

	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, envCfg, nil
}

// configSearchPaths lists the user-level locations tried for a config name.
func configSearchPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.ContainsAny(name, "/\\") {
		return nil
	}
	return []string{filepath.Join(dir, config.AppDir, name+".yaml")}
}

// applyRenderFlags applies command-line overrides to cfg.
func applyRenderFlags(f *renderFlags, cfg *config.Config) error {
	if f.templatesDir != "" {
		cfg.Templates.Dir = f.templatesDir
	}
	if f.renderer != "" {
		r := strings.ToLower(f.renderer)
		if r != config.RendererChrome && r != config.RendererBasic {
			return fmt.Errorf("%w: --renderer %q (must be chrome or basic)", errUsage, f.renderer)
		}
		cfg.Renderer.Engine = r
	}
	if f.timeout < 0 {
		return fmt.Errorf("%w: --timeout must be positive", errUsage)
	}
	if f.timeout > 0 {
		cfg.Renderer.Timeout = f.timeout
	}
	if f.native {
		cfg.Output.NativeOnly = true
	}
	return nil
}

// newLogger builds the slog handler from log settings.
// Without an explicit level, engine progress stays quiet unless --verbose.
func newLogger(w io.Writer, cfg config.LogConfig, flags commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if flags.verbose {
		level = slog.LevelDebug
	}
	if flags.quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// buildEngineOptions maps configuration onto engine options. Values are
// validated by config.Validate and applyRenderFlags, so option panics
// cannot trigger here.
func buildEngineOptions(cfg *config.Config, logger *slog.Logger) []docfill.Option {
	opts := []docfill.Option{docfill.WithLogger(logger)}

	if cfg.Templates.Dir != "" {
		opts = append(opts, docfill.WithTemplateDir(cfg.Templates.Dir))
	}
	if cfg.Templates.SignatureMarker != "" {
		opts = append(opts, docfill.WithSignatureMarker(cfg.Templates.SignatureMarker))
	}
	if cfg.Templates.BackgroundImage != "" {
		opts = append(opts, docfill.WithBackgroundImage(cfg.Templates.BackgroundImage))
	}
	if cfg.Scratch.Dir != "" {
		opts = append(opts, docfill.WithScratchDir(cfg.Scratch.Dir))
	}

	if len(cfg.Bindings) > 0 {
		bindings := make([]docfill.Binding, 0, len(cfg.Bindings))
		for _, b := range cfg.Bindings {
			bindings = append(bindings, docfill.Binding{
				Anchor:   b.Anchor,
				List:     b.List,
				Iterator: b.Iterator,
				Fields:   b.Fields,
			})
		}
		opts = append(opts, docfill.WithBindings(bindings...))
	}

	if cfg.Page.Size != "" || cfg.Page.Margin != "" {
		size, margin := cfg.Page.Size, cfg.Page.Margin
		if size == "" {
			size = pipeline.DefaultPageSize
		}
		if margin == "" {
			margin = pipeline.DefaultPageMargin
		}
		opts = append(opts, docfill.WithPage(size, margin))
	}

	if cfg.Page.Style != "" {
		opts = append(opts, docfill.WithPageStyle(cfg.Page.Style))
	}
	if cfg.Assets.Path != "" {
		opts = append(opts, docfill.WithAssetPath(cfg.Assets.Path))
	}

	if engine := strings.ToLower(cfg.Renderer.Engine); engine != "" {
		opts = append(opts, docfill.WithRenderer(engine))
	}
	if cfg.Renderer.Timeout > 0 {
		opts = append(opts, docfill.WithTimeout(cfg.Renderer.Timeout))
	}

	if !cfg.ConverterEnabled() {
		opts = append(opts, docfill.WithoutOfficeConverter())
	} else if cfg.Converter.Binary != "" {
		opts = append(opts, docfill.WithOfficeBinary(cfg.Converter.Binary))
	}
	if cfg.Converter.Timeout > 0 {
		opts = append(opts, docfill.WithConverterTimeout(cfg.Converter.Timeout))
	}

	if cfg.Output.NativeOnly {
		opts = append(opts, docfill.WithNativeOnly(true))
	}

	return opts
}

// withHint appends an actionable hint to err when one applies.
// The result still matches err with errors.Is.
func withHint(err error, cfg *config.Config) error {
	if err == nil {
		return nil
	}

	var hint string
	switch {
	case errors.Is(err, docfill.ErrBrowserConnect):
		hint = hints.ForBrowserConnect()
	case errors.Is(err, docfill.ErrConverterUnavailable), errors.Is(err, docfill.ErrConversion):
		hint = hints.ForConverter()
	case errors.Is(err, context.DeadlineExceeded):
		hint = hints.ForTimeout()
	case errors.Is(err, docfill.ErrTemplateNotFound):
		dir := cfg.Templates.Dir
		if dir == "" {
			dir = docfill.DefaultTemplateDir
		}
		hint = hints.ForTemplateNotFound(dir)
	case errors.Is(err, docfill.ErrWriteOutput):
		hint = hints.ForOutputDirectory()
	}

	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
