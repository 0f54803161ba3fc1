package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/alnah/go-docfill/internal/ledger"
)

// runHistory lists recent ledger entries.
func runHistory(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseHistoryFlags(args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: history takes no arguments", errUsage)
	}
	if flags.limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", errUsage)
	}

	cfg, _, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("%w: set ledger.path in the config file", errNoLedger)
	}

	book, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = book.Close() }()

	entries, err := book.Recent(ctx, flags.limit)
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []ledger.Entry{}
		}
		return enc.Encode(entries)
	}
	printHistory(env.Stdout, entries)
	return nil
}

// printHistory writes entries as an aligned table, newest first.
func printHistory(w io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no generations recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTEMPLATE\tOUTCOME\tDELIVERY\tDURATION\tOUTPUT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.Template,
			e.Outcome,
			e.Delivery,
			e.Duration.Round(time.Millisecond),
			e.Output,
		)
	}
	_ = tw.Flush()
}
