package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNormalizeTokens - Recovering tokens from editor markup
// ---------------------------------------------------------------------------

func TestNormalizeTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: "<p>{{ nombre }}</p>",
			want:  "<p>{{ nombre }}</p>",
		},
		{
			name:  "tight token gets spaces",
			input: "{{nombre}}",
			want:  "{{ nombre }}",
		},
		{
			name:  "split across spans",
			input: `<p>{{<span lang=ES>nom</span><span style='color:red'>bre</span> }}</p>`,
			want:  "<p>{{ nombre }}</p>",
		},
		{
			name:  "non-breaking spaces and newlines",
			input: "{{&nbsp;a.horas\n  }}",
			want:  "{{ a.horas }}",
		},
		{
			name:  "tag spanning lines",
			input: "{{ <span\nclass=x>actividad</span> }}",
			want:  "{{ actividad }}",
		},
		{
			name:  "control tag",
			input: "{%<b> if activo </b>%}si{% endif %}",
			want:  "{% if activo %}si{% endif %}",
		},
		{
			name:  "entities decoded inside token",
			input: `{{ fecha|date:&quot;02/01/2006&quot; }}`,
			want:  `{{ fecha|date:"02/01/2006" }}`,
		},
		{
			name:  "unclosed token leaves the rest",
			input: "{{ a }} and {{ <b>open",
			want:  "{{ a }} and {{ <b>open",
		},
		{
			name:  "empty token kept",
			input: "{{ <span></span> }}",
			want:  "{{ <span></span> }}",
		},
		{
			name:  "text without tokens",
			input: "<p>plain { braces }</p>",
			want:  "<p>plain { braces }</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeTokens(tt.input); got != tt.want {
				t.Errorf("NormalizeTokens(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTokens_Linear(t *testing.T) {
	t.Parallel()

	// Many openers without closers must not rescan the input.
	input := strings.Repeat("{{ x ", 20000)
	if got := NormalizeTokens(input); got != input {
		t.Error("unclosed openers altered the input")
	}

	many := strings.Repeat("<td>{{<span>v</span>}}</td>", 5000)
	got := NormalizeTokens(many)
	if n := strings.Count(got, "{{ v }}"); n != 5000 {
		t.Errorf("normalized %d tokens, want 5000", n)
	}
}

func TestStripStyleBlocks(t *testing.T) {
	t.Parallel()

	input := "<head><style>\np { mso-style: x }\n</style><STYLE type=\"text/css\">a{}</STYLE></head><p>x</p>"
	got := StripStyleBlocks(input)
	if want := "<head></head><p>x</p>"; got != want {
		t.Errorf("StripStyleBlocks() = %q, want %q", got, want)
	}
}
