// Package pipeline implements the markup (HTML) template path.
//
// Stages, in order:
//   - Preprocess: drop embedded style blocks and recover {{ }} and {% %}
//     spans that editor exports split across inline elements
//   - InjectLoops: wrap anchor rows in for-loops, via a pattern row walker
//     that backs placeholder.Expand
//   - page style injection: CSSInjection with a PageStyle rendered from the
//     assets stylesheet
//   - Render: pongo2 execution with a scalar-only Fallback when the template
//     does not parse or execute
//   - RewriteRelativePaths: resolve asset references before the document is
//     handed to a fixed-layout renderer
//
// PDF generation is handled by the root docfill package, so this package
// only deals with markup.
package pipeline
