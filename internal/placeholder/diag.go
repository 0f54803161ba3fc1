package placeholder

import "fmt"

// Severity grades a rendering diagnostic.
type Severity int

const (
	// SeverityInfo marks an expected, non-degrading event, such as an
	// image reference whose file does not exist.
	SeverityInfo Severity = iota
	// SeverityWarning marks lost fidelity: the output is still produced.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Diagnostic describes a problem found while rendering a template.
type Diagnostic struct {
	Severity Severity
	Where    string // part name, row or other location hint
	Token    string // offending token text, if any
	Message  string
}

func (d Diagnostic) String() string {
	if d.Token != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", d.Severity, d.Where, d.Message, d.Token)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Where, d.Message)
}

// Degraded reports whether any diagnostic lost fidelity.
func Degraded(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity >= SeverityWarning {
			return true
		}
	}
	return false
}
