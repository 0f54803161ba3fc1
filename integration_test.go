//go:build integration

package docfill

// Notes:
// - Real Chrome (go-rod downloads Chromium when none is found) and real
//   LibreOffice; the LibreOffice tests skip when soffice is not on PATH
// - testPool is shared by the Chrome tests and closed in TestMain

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// testPool is the shared EnginePool for the Chrome tests.
var testPool *EnginePool

func TestMain(m *testing.M) {
	testPool = NewEnginePool(min(ResolvePoolSize(0), 4), WithoutOfficeConverter())

	code := m.Run()

	_ = testPool.Close()
	os.Exit(code)
}

// acquireEngine gets an engine from the shared pool with automatic cleanup.
func acquireEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := testPool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { testPool.Release(eng) })
	return eng
}

func assertValidPDFFile(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read PDF file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

func TestGenerate_HTML_Chrome_Integration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tpl := writeHTML(t, dir, "anexo_b.html", `<!DOCTYPE html>
<html><head><title>Anexo B</title><style>h1 { color: red; }</style></head>
<body>
<h1>Reporte de {{ nombre }}</h1>
<table>
<tr><th>No.</th><th>Actividad</th><th>Horas</th></tr>
<tr><td>{{ loop_index }}</td><td>{{ actividad }}</td><td>{{ horas }}</td></tr>
</table>
<p>ELABORARON</p>
</body></html>`)
	out := filepath.Join(dir, "out", "anexo_b.pdf")

	res, err := acquireEngine(t).Generate(context.Background(), Request{
		TemplatePath: tpl,
		OutputPath:   out,
		Data:         activitiesData(3),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Delivery != DeliveryFixedLayout || res.Outcome != OutcomeFull {
		t.Errorf("result = %s", res)
	}
	assertValidPDFFile(t, out)
}

func TestGenerate_DOCX_LibreOffice_Integration(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath(DefaultOfficeBinary); err != nil {
		t.Skip("soffice not on PATH")
	}

	dir := t.TempDir()
	eng, err := NewEngine(WithTemplateDir(dir), WithScratchDir(t.TempDir()), WithRenderer(RendererBasic))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer eng.Close()

	writeDOCX(t, dir, "anexo_a.docx", activitiesDOCX())
	out := filepath.Join(dir, "out", "anexo_a.pdf")

	res, err := eng.Generate(context.Background(), Request{
		Template:   "anexo_a.docx",
		OutputPath: out,
		Data:       activitiesData(4),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Delivery != DeliveryFixedLayout {
		t.Fatalf("Delivery = %v, message: %s", res.Delivery, res.Message)
	}
	assertValidPDFFile(t, out)
	if _, err := os.Stat(filepath.Join(dir, "out", "anexo_a.docx")); !os.IsNotExist(err) {
		t.Error("native DOCX left next to the PDF")
	}
}
