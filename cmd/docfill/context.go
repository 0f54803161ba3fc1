package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	docfill "github.com/alnah/go-docfill"
	"github.com/alnah/go-docfill/internal/dateutil"
	"github.com/alnah/go-docfill/internal/yamlutil"
)

// contextSources lists where a generation context comes from, applied in
// order: files, then --set values, then --stamp dates.
type contextSources struct {
	files  []string
	sets   []string
	stamps []string
}

// loadContext merges the context sources. Later sources replace earlier
// top-level keys.
func loadContext(src contextSources, now time.Time) (docfill.Context, error) {
	data := docfill.Context{}

	for _, path := range src.files {
		m, err := readContextFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			data[k] = v
		}
	}

	for _, kv := range src.sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --set %q (want key=value)", errUsage, kv)
		}
		data[key] = value
	}

	for _, spec := range src.stamps {
		key, format, _ := strings.Cut(spec, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w: --stamp %q (want key[=FORMAT])", errUsage, spec)
		}
		stamp, err := dateutil.Stamp(format, now)
		if err != nil {
			return nil, fmt.Errorf("--stamp %s: %w", key, err)
		}
		data[key] = stamp
	}

	return data, nil
}

// readContextFile decodes a YAML or JSON context file whose top level is a
// mapping.
func readContextFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- context path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errReadContext, err)
	}
	m, err := yamlutil.UnmarshalMapping(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errReadContext, path, err)
	}
	return m, nil
}
