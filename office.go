package docfill

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docfill/internal/fileutil"
	"github.com/alnah/go-docfill/internal/process"
)

// officeConverter converts a DOCX file to PDF.
type officeConverter interface {
	ConvertToPDF(ctx context.Context, docxPath, pdfPath string) error
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. Commands run in their
// own process group, which is killed when ctx is done.
type ExecRunner struct{}

// LookPath implements CommandRunner.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary is operator-configured
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}
	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), stderr.String(), ctxErr
	}
	return stdout.String(), stderr.String(), err
}

var _ CommandRunner = ExecRunner{}

// sofficeConverter converts documents by invoking LibreOffice headless.
type sofficeConverter struct {
	binary  string
	timeout time.Duration
	runner  CommandRunner
}

var _ officeConverter = (*sofficeConverter)(nil)

func newSofficeConverter(binary string, timeout time.Duration) *sofficeConverter {
	return &sofficeConverter{binary: binary, timeout: timeout, runner: ExecRunner{}}
}

// ConvertToPDF writes the PDF rendition of docxPath to pdfPath.
// A missing binary wraps ErrConverterUnavailable; any other failure wraps
// ErrConversion.
func (c *sofficeConverter) ConvertToPDF(ctx context.Context, docxPath, pdfPath string) error {
	bin, err := c.runner.LookPath(c.binary)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConverterUnavailable, c.binary, err)
	}

	workDir, err := os.MkdirTemp("", "docfill-soffice-*")
	if err != nil {
		return fmt.Errorf("%w: creating work dir: %v", ErrConversion, err)
	}
	defer os.RemoveAll(workDir)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// A private profile lets conversions run side by side.
	profile := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(workDir, "profile"))}
	_, stderr, err := c.runner.Run(ctx, bin,
		"-env:UserInstallation="+profile.String(),
		"--headless", "--norestore", "--nolockcheck",
		"--convert-to", "pdf",
		"--outdir", workDir,
		docxPath,
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v: %s", ErrConversion, err, strings.TrimSpace(stderr))
	}

	produced := filepath.Join(workDir, fileutil.Stem(docxPath)+".pdf")
	data, err := os.ReadFile(produced) // #nosec G304 -- path built from our work dir
	if err != nil {
		return fmt.Errorf("%w: no PDF produced: %s", ErrConversion, strings.TrimSpace(stderr))
	}
	if err := fileutil.WriteFileAtomic(pdfPath, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
