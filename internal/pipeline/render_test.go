package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// ---------------------------------------------------------------------------
// TestRender - Structured render and scalar fallback
// ---------------------------------------------------------------------------

func TestRender_Structured(t *testing.T) {
	t.Parallel()

	out := Render(placeholder.NewEvaluator("test"), "<p>{{ nombre }}|{{ ausente }}</p>", map[string]any{"nombre": "Ana & Luis"})
	if out.Fallback {
		t.Fatalf("unexpected fallback: %v", out.Diagnostics)
	}
	if want := "<p>Ana &amp; Luis|</p>"; out.HTML != want {
		t.Errorf("HTML = %q, want %q", out.HTML, want)
	}
	if placeholder.Degraded(out.Diagnostics) {
		t.Errorf("diagnostics = %v, want none", out.Diagnostics)
	}
}

func TestRender_FallbackOnMalformedTemplate(t *testing.T) {
	t.Parallel()

	src := `<p>{{ alumno }}</p>{% if activo %}` +
		`<table><tr><td>{{ actividad }}</td><td>{{ horas }}</td></tr></table>`
	injected, _, err := InjectLoops(src, []placeholder.Binding{actividadBinding})
	if err != nil {
		t.Fatalf("InjectLoops() error = %v", err)
	}

	data := map[string]any{
		"alumno":     "Ana <A>",
		"activities": []map[string]any{{"actividad": "Design", "horas": "10"}},
	}
	out := Render(placeholder.NewEvaluator("test"), injected, data)

	if !out.Fallback {
		t.Fatal("Fallback = false, want true for an unterminated tag")
	}
	if !placeholder.Degraded(out.Diagnostics) {
		t.Error("fallback render not reported as degraded")
	}
	if out.HTML == "" {
		t.Fatal("fallback produced no output")
	}
	if !strings.Contains(out.HTML, "<p>Ana &lt;A&gt;</p>") {
		t.Errorf("scalar not substituted: %s", out.HTML)
	}
	if !strings.Contains(out.HTML, "{{ a.actividad }}") {
		t.Errorf("list row should stay unexpanded: %s", out.HTML)
	}
	if strings.Contains(out.HTML, "{%") {
		t.Errorf("control tags left in output: %s", out.HTML)
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"nombre": "Ana",
		"horas":  placeholder.Number(7.5),
		"activo": false,
		"lista":  []map[string]any{{"x": 1}},
		"grupo":  map[string]any{"x": 1},
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "scalar", input: "{{ nombre }}", want: "Ana"},
		{name: "number", input: "{{ horas }}h", want: "7.5h"},
		{name: "bool", input: "{{ activo }}", want: "False"},
		{name: "absent name empty", input: "[{{ ausente }}]", want: "[]"},
		{name: "list kept", input: "{{ lista }}", want: "{{ lista }}"},
		{name: "mapping kept", input: "{{ grupo }}", want: "{{ grupo }}"},
		{name: "iterator token kept", input: "{{ a.horas }}", want: "{{ a.horas }}"},
		{name: "filter kept", input: "{{ nombre|upper }}", want: "{{ nombre|upper }}"},
		{name: "statements removed", input: "{% for a in lista %}x{% endfor %}", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Fallback(tt.input, data); got != tt.want {
				t.Errorf("Fallback(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEmbedImages - IMAGE_PATH: values on the markup path
// ---------------------------------------------------------------------------

func TestEmbedImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	chart := filepath.Join(dir, "grafica.png")
	if err := os.WriteFile(chart, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	data := map[string]any{
		"grafica": placeholder.ImageSentinel + chart,
		"firma":   placeholder.ImageSentinel + filepath.Join(dir, "missing.png"),
		"nombre":  "Ana",
	}
	got, diags := EmbedImages("<p>{{ grafica }}</p><p>{{ firma }}</p><p>{{ nombre }}</p>", data)

	if !strings.Contains(got, `<img src="file://`) || !strings.Contains(got, `grafica.png"`) {
		t.Errorf("image not embedded: %s", got)
	}
	if !strings.Contains(got, "<p></p>") {
		t.Errorf("missing image should render empty: %s", got)
	}
	if !strings.Contains(got, "{{ nombre }}") {
		t.Errorf("plain scalar should be left to the renderer: %s", got)
	}
	if len(diags) != 1 || diags[0].Severity != placeholder.SeverityInfo {
		t.Errorf("diagnostics = %v, want one info note", diags)
	}
}
