// Package placeholder holds what both template paths share: the {{ token }}
// grammar, anchor bindings, the row expansion contract and the expression
// evaluator.
//
// Expansion works on any format through the RowLocator interface. The
// structured-document backend lives in internal/docx, the markup backend in
// internal/pipeline. Each backend only has to locate rows, expose their text,
// rewrite their token text in place, and wrap a row in its own loop markers.
package placeholder
