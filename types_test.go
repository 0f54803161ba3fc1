package docfill

// Notes:
// - Format: extension-based dispatch, case-insensitive
// - Outcome/Delivery: string forms used in logs and the ledger
// - Request: required fields
// - Result: OK and String on nil and populated results

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestFormatOf - Template format detection
// ---------------------------------------------------------------------------

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want Format
	}{
		{"annex.docx", FormatDOCX},
		{"ANNEX.DOCX", FormatDOCX},
		{"dir.v2/annex.html", FormatHTML},
		{"annex.htm", FormatHTML},
		{"annex.odt", FormatUnknown},
		{"annex", FormatUnknown},
		{"", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatOf(tt.name); got != tt.want {
				t.Errorf("FormatOf(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{FormatDOCX.String(), "docx"},
		{FormatHTML.String(), "html"},
		{FormatUnknown.String(), "unknown"},
		{OutcomeFull.String(), "full"},
		{OutcomeDegraded.String(), "degraded"},
		{OutcomeFailed.String(), "failed"},
		{DeliveryNative.String(), "native"},
		{DeliveryFixedLayout.String(), "fixed-layout"},
		{DeliveryNone.String(), "none"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRequest_Validate - Request Validation
// ---------------------------------------------------------------------------

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"name and output", Request{Template: "a.docx", OutputPath: "a.pdf"}, nil},
		{"path and output", Request{TemplatePath: "/t/a.html", OutputPath: "a.pdf"}, nil},
		{"no template", Request{OutputPath: "a.pdf"}, ErrEmptyTemplate},
		{"no output", Request{Template: "a.docx"}, ErrEmptyOutputPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	var nilResult *Result
	if nilResult.OK() {
		t.Error("nil Result reports OK")
	}
	if nilResult.String() != "<nil>" {
		t.Errorf("nil String() = %q", nilResult.String())
	}

	res := &Result{Outcome: OutcomeDegraded, Delivery: DeliveryNative, OutputPath: "out/a.docx", Message: "done"}
	if !res.OK() {
		t.Error("degraded Result should be OK")
	}
	if s := res.String(); !strings.Contains(s, "degraded native") || !strings.Contains(s, "out/a.docx") {
		t.Errorf("String() = %q", s)
	}
	if (&Result{}).OK() {
		t.Error("zero Result should not be OK")
	}
}
