package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	docfill "github.com/alnah/go-docfill"
	"github.com/alnah/go-docfill/internal/config"
	"github.com/alnah/go-docfill/internal/fileutil"
)

// versionProbeTimeout bounds "<binary> --version" calls.
const versionProbeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Renderer  string        `json:"renderer"`
	Chrome    binaryInfo    `json:"chrome"`
	Office    binaryInfo    `json:"libreoffice"`
	Templates templatesInfo `json:"templates"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// binaryInfo holds detection results for an external program.
type binaryInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox *bool  `json:"sandbox,omitempty"`
}

// templatesInfo describes the template directory.
type templatesInfo struct {
	Dir    string `json:"dir"`
	Exists bool   `json:"exists"`
	DOCX   int    `json:"docx"`
	HTML   int    `json:"html"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable    bool   `json:"temp_writable"`
	ScratchDir      string `json:"scratch_dir,omitempty"`
	ScratchWritable bool   `json:"scratch_writable"`
	Ledger          string `json:"ledger,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad usage.
func runDoctorCmd(args []string, env *Environment) int {
	var common commonFlags
	jsonOutput := false
	fs := newFlagSet("doctor")
	common.register(fs)
	fs.BoolVar(&jsonOutput, "json", false, "JSON output")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runHelp([]string{"doctor"}, env)
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", parseError(err))
		return ExitUsage
	}

	cfg, _, err := loadConfig(common.config, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(cfg)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status:   "ready",
		Renderer: strings.ToLower(cfg.Renderer.Engine),
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}
	if result.Renderer == "" {
		result.Renderer = docfill.RendererChrome
	}

	checkChrome(result)
	checkOffice(result, cfg)
	checkTemplates(result, cfg)
	checkEnvironment(result)
	checkSystem(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium. A missing browser is an error only
// when the chrome renderer is selected.
func checkChrome(result *doctorResult) {
	report := func(msg string) {
		if result.Renderer == docfill.RendererChrome {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg+" (not needed by the basic renderer)")
		}
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			report("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		report(fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	sandbox := result.Env.NoSandbox != "1"
	result.Chrome = binaryInfo{
		Found:   true,
		Path:    chromePath,
		Sandbox: &sandbox,
	}
	version, err := probeVersion(chromePath)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
	result.Chrome.Version = version
}

// checkOffice detects LibreOffice. Without it DOCX templates are delivered
// as filled DOCX instead of PDF.
func checkOffice(result *doctorResult, cfg *config.Config) {
	if !cfg.ConverterEnabled() {
		return
	}
	bin := cfg.Converter.Binary
	if bin == "" {
		bin = docfill.DefaultOfficeBinary
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LibreOffice (%s) not found; DOCX templates will be delivered as DOCX", bin))
		return
	}

	result.Office = binaryInfo{Found: true, Path: path}
	version, err := probeVersion(path)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get LibreOffice version: %v", err))
	}
	result.Office.Version = version
}

// checkTemplates inspects the template directory.
func checkTemplates(result *doctorResult, cfg *config.Config) {
	dir := cfg.Templates.Dir
	if dir == "" {
		dir = docfill.DefaultTemplateDir
	}
	result.Templates.Dir = dir

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Template directory %s not readable; templates must be passed by path", dir))
		return
	}
	result.Templates.Exists = true
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch docfill.FormatOf(e.Name()) {
		case docfill.FormatDOCX:
			result.Templates.DOCX++
		case docfill.FormatHTML:
			result.Templates.HTML++
		}
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Chrome.Found {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("DOCFILL_CONTAINER") == "1" {
		return true, "DOCFILL_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies writable scratch locations.
func checkSystem(result *doctorResult, cfg *config.Config) {
	tmpDir := os.TempDir()
	if err := probeWritable(tmpDir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		result.System.TempWritable = true
	}

	if cfg.Scratch.Dir != "" {
		result.System.ScratchDir = cfg.Scratch.Dir
		if err := probeWritable(cfg.Scratch.Dir); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Scratch directory not writable: %s", cfg.Scratch.Dir))
		} else {
			result.System.ScratchWritable = true
		}
	}

	result.System.Ledger = cfg.Ledger.Path
}

// probeWritable creates and removes a file in dir.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, "docfill-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}

// probeVersion runs "<path> --version" and returns its first output line.
func probeVersion(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- path is a located browser/office binary
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docfill doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Chrome/Chromium (renderer: %s)\n", r.Renderer)
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox != nil && *r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LibreOffice")
	if r.Office.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Office.Path)
		if r.Office.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Office.Version)
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found or disabled")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Templates")
	if r.Templates.Exists {
		fmt.Fprintf(w, "  [OK] %s (%d docx, %d html)\n", r.Templates.Dir, r.Templates.DOCX, r.Templates.HTML)
	} else {
		fmt.Fprintf(w, "  [--] %s not found\n", r.Templates.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.ScratchDir != "" {
		if r.System.ScratchWritable {
			fmt.Fprintf(w, "  [OK] Scratch directory: %s\n", r.System.ScratchDir)
		} else {
			fmt.Fprintf(w, "  [ERROR] Scratch directory: %s not writable\n", r.System.ScratchDir)
		}
	}
	if r.System.Ledger != "" {
		fmt.Fprintf(w, "  [OK] Ledger: %s\n", r.System.Ledger)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
