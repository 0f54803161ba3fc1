package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// renderFlags holds flags that shape how documents are produced.
type renderFlags struct {
	templatesDir string
	renderer     string
	timeout      time.Duration
	native       bool
}

func (f *renderFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.templatesDir, "templates-dir", "", "directory searched for template names")
	fs.StringVar(&f.renderer, "renderer", "", "HTML renderer: chrome or basic")
	fs.DurationVar(&f.timeout, "timeout", 0, "PDF rendering timeout (e.g. 30s, 2m)")
	fs.BoolVar(&f.native, "native", false, "deliver the filled DOCX/HTML without converting")
}

// generateFlags holds flags for the generate command.
type generateFlags struct {
	common commonFlags
	render renderFlags
	output string
	data   []string
	set    []string
	stamp  []string
}

// batchFlags holds flags for the batch command.
type batchFlags struct {
	common  commonFlags
	render  renderFlags
	workers int
}

// historyFlags holds flags for the history command.
type historyFlags struct {
	common commonFlags
	limit  int
	json   bool
}

// newFlagSet returns a silent flag set; usage is printed by the help command.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseError wraps a flag parsing failure as a usage error, keeping ErrHelp.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", errUsage, err)
}

func parseGenerateFlags(args []string) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := newFlagSet("generate")
	f.common.register(fs)
	f.render.register(fs)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringArrayVarP(&f.data, "data", "d", nil, "context file (YAML or JSON), repeatable")
	fs.StringArrayVar(&f.set, "set", nil, "context value key=value, repeatable")
	fs.StringArrayVar(&f.stamp, "stamp", nil, "generation date key[=FORMAT], repeatable")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

func parseBatchFlags(args []string) (*batchFlags, []string, error) {
	f := &batchFlags{}
	fs := newFlagSet("batch")
	f.common.register(fs)
	f.render.register(fs)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

func parseHistoryFlags(args []string) (*historyFlags, []string, error) {
	f := &historyFlags{}
	fs := newFlagSet("history")
	f.common.register(fs)
	fs.IntVarP(&f.limit, "limit", "n", 0, "number of entries (0 = default)")
	fs.BoolVar(&f.json, "json", false, "JSON output")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}
