package pipeline

// Notes:
// - Tests RewriteRelativePaths through its public API only.
// - Traversal tests check the observable behavior (path not rewritten).

import (
	"runtime"
	"strings"
	"testing"
)

func testSourceDir() string {
	if runtime.GOOS == "windows" {
		return `C:\docs`
	}
	return "/docs"
}

// ---------------------------------------------------------------------------
// TestRewriteRelativePaths - Asset references of exported templates
// ---------------------------------------------------------------------------

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	sourceDir := testSourceDir()

	tests := []struct {
		name         string
		html         string
		sourceDir    string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "relative image",
			html:         `<img src="anexo_files/image001.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file://`, `anexo_files/image001.png`},
		},
		{
			name:         "percent-encoded folder",
			html:         `<img src="Anexo%205.1_files/image001.jpg">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file://`, `Anexo%205.1_files/image001.jpg`},
		},
		{
			name:         "vml image data",
			html:         `<v:imagedata src="anexo_files/image002.png"></v:imagedata>`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="file://`},
		},
		{
			name:         "cell background",
			html:         `<table><tr><td background="fondo.jpg">x</td></tr></table>`,
			sourceDir:    sourceDir,
			wantContains: []string{`background="file://`},
		},
		{
			name:         "stylesheet link",
			html:         `<link rel="stylesheet" href="anexo_files/filelist.css">`,
			sourceDir:    sourceDir,
			wantContains: []string{`href="file://`},
		},
		{
			name:         "absolute path unchanged",
			html:         `<img src="/abs/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="/abs/logo.png"`},
		},
		{
			name:         "http URL unchanged",
			html:         `<img src="https://example.com/logo.png">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="https://example.com/logo.png"`},
		},
		{
			name:         "data URI unchanged",
			html:         `<img src="data:image/png;base64,AAAA">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="data:image/png;base64,AAAA"`},
		},
		{
			name:         "anchor and mail links unchanged",
			html:         `<a href="#firmas">f</a><a href="mailto:a@b.c">m</a>`,
			sourceDir:    sourceDir,
			wantContains: []string{`href="#firmas"`, `href="mailto:a@b.c"`},
		},
		{
			name:         "script src not rewritten",
			html:         `<script src="app.js"></script>`,
			sourceDir:    sourceDir,
			wantExcludes: []string{`file://`},
		},
		{
			name:         "empty sourceDir returns unchanged",
			html:         `<img src="logo.png">`,
			sourceDir:    "",
			wantContains: []string{`src="logo.png"`},
		},
		{
			name:         "parent traversal blocked",
			html:         `<img src="../../etc/passwd">`,
			sourceDir:    sourceDir,
			wantContains: []string{`src="../../etc/passwd"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativePaths(tt.html, tt.sourceDir)
			if err != nil {
				t.Fatalf("RewriteRelativePaths() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("RewriteRelativePaths() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("RewriteRelativePaths() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestRewriteRelativePaths_ExportedDocument(t *testing.T) {
	t.Parallel()

	src := `<html xmlns:v="urn:schemas-microsoft-com:vml">
<head><meta charset="utf-8"></head>
<body><p>{{ nombre }}</p><img src="./logo.png"></body>
</html>`

	got, err := RewriteRelativePaths(src, testSourceDir())
	if err != nil {
		t.Fatalf("RewriteRelativePaths() error = %v", err)
	}
	if !strings.Contains(got, "<html") || !strings.Contains(got, "<head>") {
		t.Error("document structure not preserved")
	}
	if !strings.Contains(got, "{{ nombre }}") {
		t.Error("template text altered")
	}
	if !strings.Contains(got, `src="file://`) {
		t.Error("image path not rewritten")
	}
}

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	tests := []struct {
		path string
		want string
	}{
		{path: "/docs/logo.png", want: "file:///docs/logo.png"},
		{path: "/docs/my images/logo.png", want: "file:///docs/my%20images/logo.png"},
	}
	for _, tt := range tests {
		if got := pathToFileURL(tt.path); got != tt.want {
			t.Errorf("pathToFileURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
