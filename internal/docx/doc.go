// Package docx reads, rewrites and writes Word (OOXML) packages.
//
// Two passes operate on a Package. Inject turns anchor rows into row-loop
// templates delimited by {%tr for ... %} and {%tr endfor %} marker rows and
// places a page break before the signature block. Render then resolves
// {{ token }} expressions and expands those marker-delimited rows against a
// data context, embedding pictures for IMAGE_PATH: values.
//
// Tokens split across runs by Word are consolidated before either pass, so
// a token is always read from, and written to, a single w:t element.
package docx
