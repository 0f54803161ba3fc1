package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	docfill "github.com/alnah/go-docfill"
	"github.com/alnah/go-docfill/internal/ledger"
	"github.com/alnah/go-docfill/internal/yamlutil"
)

// manifest lists the generations of a batch run.
//
//	jobs:
//	  - template: anexo_a.docx
//	    output: out/anexo_a.pdf
//	    data: contexts/ana.yaml
//	    context: {nombre: Ana Torres}
//	    native: false
type manifest struct {
	Jobs []manifestJob `yaml:"jobs"`
}

// manifestJob is one generation. Relative template and data paths are
// resolved against the manifest directory; relative outputs against the
// output directory (default: the manifest directory).
type manifestJob struct {
	Template string         `yaml:"template"`
	Output   string         `yaml:"output"`
	Data     string         `yaml:"data"`
	Context  map[string]any `yaml:"context"`
	Native   bool           `yaml:"native"`
}

// batchResult holds the outcome of a single job.
type batchResult struct {
	Template string
	Result   *docfill.Result
	Err      error
}

// runBatch renders every job of a manifest through an engine pool.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBatchFlags(args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: batch takes exactly one manifest, got %d", errUsage, len(positional))
	}

	cfg, envCfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := applyRenderFlags(&flags.render, cfg); err != nil {
		return err
	}
	logger := newLogger(env.Stderr, cfg.Log, flags.common)

	m, err := readManifest(positional[0])
	if err != nil {
		return err
	}
	if len(m.Jobs) == 0 {
		if !flags.common.quiet {
			fmt.Fprintln(env.Stdout, "nothing to generate")
		}
		return nil
	}

	baseDir := filepath.Dir(positional[0])
	outDir := cfg.Output.DefaultDir
	if outDir == "" {
		outDir = baseDir
	}
	requests := make([]docfill.Request, len(m.Jobs))
	for i, job := range m.Jobs {
		req, err := buildJobRequest(job, baseDir, outDir)
		if err != nil {
			return fmt.Errorf("job %d (%s): %w", i+1, job.Template, err)
		}
		requests[i] = req
	}

	workers := flags.workers
	if workers <= 0 {
		workers = envCfg.Workers
	}
	pool := docfill.NewEnginePool(docfill.ResolvePoolSize(workers), buildEngineOptions(cfg, logger)...)
	defer func() { _ = pool.Close() }()

	var book *ledger.Ledger
	if cfg.Ledger.Path != "" {
		book, err = ledger.Open(cfg.Ledger.Path)
		if err != nil {
			logger.Warn("ledger unavailable", "path", cfg.Ledger.Path, "error", err)
		} else {
			defer func() { _ = book.Close() }()
		}
	}

	results := generateBatch(ctx, pool, requests, book, logger)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "[FAIL] %s: %v\n", r.Template, withHint(r.Err, cfg))
			continue
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "[%s] %s -> %s\n", r.Result.Outcome, r.Template, r.Result.OutputPath)
		}
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "%d generated, %d failed\n", len(results)-failed, failed)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errBatchFailed, failed, len(results))
	}
	return nil
}

// readManifest decodes a batch manifest.
func readManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- manifest path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errReadManifest, err)
	}
	var m manifest
	if err := yamlutil.UnmarshalStrict(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errReadManifest, path, err)
	}
	return &m, nil
}

// buildJobRequest resolves a manifest job into a request.
func buildJobRequest(job manifestJob, baseDir, outDir string) (docfill.Request, error) {
	if job.Template == "" {
		return docfill.Request{}, fmt.Errorf("%w: template is required", errUsage)
	}

	data := docfill.Context{}
	if job.Data != "" {
		m, err := readContextFile(relativeTo(baseDir, job.Data))
		if err != nil {
			return docfill.Request{}, err
		}
		for k, v := range m {
			data[k] = v
		}
	}
	for k, v := range job.Context {
		data[k] = v
	}

	output := resolveOutputPath(job.Output, job.Template, outDir)
	if job.Output != "" {
		output = relativeTo(outDir, job.Output)
	}

	return docfill.Request{
		Template:     job.Template,
		TemplatePath: relativeTo(baseDir, job.Template),
		Data:         data,
		OutputPath:   output,
		NativeOnly:   job.Native,
	}, nil
}

// relativeTo joins path to dir unless path is absolute.
func relativeTo(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// generateBatch processes requests concurrently using the engine pool.
// Results keep the order of requests.
func generateBatch(ctx context.Context, pool *docfill.EnginePool, requests []docfill.Request, book *ledger.Ledger, logger *slog.Logger) []batchResult {
	concurrency := min(pool.Size(), len(requests))

	results := make([]batchResult, len(requests))
	var wg sync.WaitGroup
	jobs := make(chan int, len(requests))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			eng, err := pool.Acquire()
			if err != nil {
				// Engine creation failed, mark this worker's share as failed.
				for idx := range jobs {
					results[idx] = batchResult{Template: requests[idx].Template, Err: err}
				}
				return
			}
			defer pool.Release(eng)

			for idx := range jobs {
				req := requests[idx]
				if ctx.Err() != nil {
					results[idx] = batchResult{Template: req.Template, Err: ctx.Err()}
					continue
				}
				res, err := eng.Generate(ctx, req)
				results[idx] = batchResult{Template: req.Template, Result: res, Err: err}
				if book != nil && res != nil {
					if _, err := book.Record(ctx, entryFor(req.Template, res)); err != nil {
						logger.Warn("recording generation failed", "template", req.Template, "error", err)
					}
				}
			}
		}()
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}
