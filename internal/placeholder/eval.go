package placeholder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Sentinel errors for expression evaluation.
var (
	ErrParse   = errors.New("template parse failed")
	ErrExecute = errors.New("template execution failed")
)

// Evaluator compiles and executes Jinja-style expressions and templates.
// It owns its template set and expression cache; create one per engine.
// Safe for concurrent use.
type Evaluator struct {
	set   *pongo2.TemplateSet
	mu    sync.Mutex
	cache map[string]compiled
}

type compiled struct {
	tpl *pongo2.Template
	err error
}

// NewEvaluator creates an Evaluator with an isolated template set.
func NewEvaluator(name string) *Evaluator {
	return &Evaluator{
		set:   pongo2.NewSet(name, pongo2.DefaultLoader),
		cache: make(map[string]compiled),
	}
}

// Eval evaluates a single token expression and returns its unescaped string
// form. Compiled expressions are cached, including parse failures.
func (e *Evaluator) Eval(expr string, data map[string]any) (string, error) {
	c := e.compileExpr(expr)
	if c.err != nil {
		return "", c.err
	}
	out, err := c.tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrExecute, expr, err)
	}
	return out, nil
}

// Check reports whether expr parses as an expression.
func (e *Evaluator) Check(expr string) error {
	return e.compileExpr(expr).err
}

func (e *Evaluator) compileExpr(expr string) compiled {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.cache[expr]; ok {
		return c
	}
	src := "{% autoescape off %}" + Format(expr) + "{% endautoescape %}"
	tpl, err := e.set.FromString(src)
	c := compiled{tpl: tpl}
	if err != nil {
		c.err = fmt.Errorf("%w: %q: %v", ErrParse, expr, err)
	}
	e.cache[expr] = c
	return c
}

// Render parses src as a whole template and executes it with HTML
// autoescaping. Parse failures wrap ErrParse and execution failures wrap
// ErrExecute, so callers can choose a fallback.
func (e *Evaluator) Render(src string, data map[string]any) (string, error) {
	tpl, err := e.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecute, err)
	}
	return out, nil
}
