package fileutil_test

// Notes:
// - TestWriteTempFile_CreateTempError: this test modifies the global TMPDIR
//   environment variable and cannot run in parallel with other tests.
// - The WriteString and Close error branches in WriteTempFile are not tested
//   because triggering disk write failures is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docfill/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "valid extension docx", extension: "docx"},
		{name: "valid extension html", extension: "html"},
		{name: "empty extension", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash path traversal", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash path traversal", extension: "..\\windows\\system32", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte injection", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary file creation
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<html><body>Anexo</body></html>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}
	defer cleanup()

	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path = %q, want .html suffix", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if string(data) != "<html><body>Anexo</body></html>" {
		t.Errorf("content = %q", data)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup at %s", path)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("content", "../foo")
	if cleanup != nil {
		defer cleanup()
	}
	if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Errorf("WriteTempFile() error = %v, want %v", err, fileutil.ErrExtensionPathTraversal)
	}
}

// NOTE: This test modifies TMPDIR and cannot run in parallel.
func TestWriteTempFile_CreateTempError(t *testing.T) {
	t.Setenv("TMPDIR", "/nonexistent/path/that/does/not/exist")

	_, cleanup, err := fileutil.WriteTempFile("content", "html")
	if cleanup != nil {
		defer cleanup()
	}
	if err == nil {
		t.Fatal("WriteTempFile() expected error when TMPDIR is invalid, got nil")
	}
	if !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %q, want error containing 'creating temp file'", err.Error())
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic output writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "anexo.pdf")
		if err := fileutil.WriteFileAtomic(path, []byte("%PDF-1.4")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile error = %v", err)
		}
		if string(data) != "%PDF-1.4" {
			t.Errorf("content = %q, want %%PDF-1.4", data)
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "anexo.docx")
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := fileutil.WriteFileAtomic(path, []byte("new")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "new" {
			t.Errorf("content = %q, want new", data)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.WriteFileAtomic("", nil); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("WriteFileAtomic(\"\") error = %v, want %v", err, fileutil.ErrEmptyPath)
		}
	})
}

// ---------------------------------------------------------------------------
// TestScratchPath - Unique scratch names
// ---------------------------------------------------------------------------

func TestScratchPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := fileutil.ScratchPath(dir, "/srv/templates/anexo_3.docx", "_INJECTED.docx")
	b := fileutil.ScratchPath(dir, "/srv/templates/anexo_3.docx", "_INJECTED.docx")

	if a == b {
		t.Errorf("ScratchPath() returned the same path twice: %s", a)
	}
	if filepath.Dir(a) != dir {
		t.Errorf("ScratchPath() dir = %s, want %s", filepath.Dir(a), dir)
	}
	base := filepath.Base(a)
	if !strings.HasPrefix(base, "anexo_3-") || !strings.HasSuffix(base, "_INJECTED.docx") {
		t.Errorf("ScratchPath() base = %q, want anexo_3-<uuid>_INJECTED.docx", base)
	}
}

func TestStemAndReplaceExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		wantStem string
		wantPDF  string
	}{
		{path: "out/anexo.pdf", wantStem: "anexo", wantPDF: "out/anexo.pdf"},
		{path: "out/anexo.v2.docx", wantStem: "anexo.v2", wantPDF: "out/anexo.v2.pdf"},
		{path: "anexo", wantStem: "anexo", wantPDF: "anexo.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.Stem(tt.path); got != tt.wantStem {
				t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.wantStem)
			}
			if got := fileutil.ReplaceExt(tt.path, ".pdf"); got != tt.wantPDF {
				t.Errorf("ReplaceExt(%q) = %q, want %q", tt.path, got, tt.wantPDF)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantF   bool
		wantDir bool
	}{
		{name: "existing file", path: testFile, wantF: true},
		{name: "directory", path: tempDir, wantDir: true},
		{name: "missing", path: filepath.Join(tempDir, "missing.txt")},
		{name: "empty path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.wantF {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantF)
			}
			if got := fileutil.DirExists(tt.path); got != tt.wantDir {
				t.Errorf("DirExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Path vs name detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"anexo_3", false},
		{"anexo_3.docx", false},
		{"./anexo_3.docx", true},
		{"../shared/anexo.html", true},
		{"/srv/templates/anexo.docx", true},
		{`C:\templates\anexo.docx`, true},
		{"sub/dir", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
