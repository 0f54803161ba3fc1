package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	docfill "github.com/alnah/go-docfill"
	"github.com/alnah/go-docfill/internal/config"
	"github.com/alnah/go-docfill/internal/fileutil"
	"github.com/alnah/go-docfill/internal/ledger"
)

// runGenerate fills one template.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: generate takes exactly one template, got %d", errUsage, len(positional))
	}
	template := positional[0]

	cfg, _, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := applyRenderFlags(&flags.render, cfg); err != nil {
		return err
	}
	logger := newLogger(env.Stderr, cfg.Log, flags.common)

	data, err := loadContext(contextSources{
		files:  flags.data,
		sets:   flags.set,
		stamps: flags.stamp,
	}, env.Now())
	if err != nil {
		return err
	}

	eng, err := docfill.NewEngine(buildEngineOptions(cfg, logger)...)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	res, genErr := eng.Generate(ctx, docfill.Request{
		Template:     template,
		TemplatePath: template,
		Data:         data,
		OutputPath:   resolveOutputPath(flags.output, template, cfg.Output.DefaultDir),
	})
	recordGeneration(ctx, cfg, logger, template, res)
	if genErr != nil {
		return withHint(genErr, cfg)
	}

	if !flags.common.quiet {
		printResult(env, res, flags.common.verbose)
	}
	return nil
}

// resolveOutputPath picks the output file for a template.
// An empty output or an existing directory gets <stem>.pdf inside it.
func resolveOutputPath(output, template, defaultDir string) string {
	name := fileutil.Stem(template) + ".pdf"
	switch {
	case output == "":
		return filepath.Join(defaultDir, name)
	case fileutil.DirExists(output):
		return filepath.Join(output, name)
	}
	return output
}

// printResult reports a finished generation on stdout.
func printResult(env *Environment, res *docfill.Result, verbose bool) {
	fmt.Fprintln(env.Stdout, res.Message)
	if res.Outcome == docfill.OutcomeDegraded {
		fmt.Fprintf(env.Stdout, "  %d template issue(s), output may be incomplete\n", len(res.Diagnostics))
	}
	if verbose {
		for _, d := range res.Diagnostics {
			fmt.Fprintf(env.Stdout, "  - %s\n", d)
		}
		fmt.Fprintf(env.Stdout, "  %s %s in %v (request %s)\n", res.Outcome, res.Delivery, res.Duration, res.RequestID)
	}
}

// recordGeneration stores res in the ledger when one is configured.
// Ledger failures are logged, never returned.
func recordGeneration(ctx context.Context, cfg *config.Config, logger *slog.Logger, template string, res *docfill.Result) {
	if cfg.Ledger.Path == "" || res == nil {
		return
	}
	l, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		logger.Warn("ledger unavailable", "path", cfg.Ledger.Path, "error", err)
		return
	}
	defer func() { _ = l.Close() }()

	if _, err := l.Record(ctx, entryFor(template, res)); err != nil {
		logger.Warn("recording generation failed", "error", err)
	}
}

// entryFor converts a generation result into a ledger entry.
func entryFor(template string, res *docfill.Result) ledger.Entry {
	return ledger.Entry{
		ID:       res.RequestID,
		Template: template,
		Output:   res.OutputPath,
		Outcome:  res.Outcome.String(),
		Delivery: res.Delivery.String(),
		Message:  res.Message,
		Duration: res.Duration,
	}
}
