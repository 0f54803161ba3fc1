// Package assets provides the page stylesheets injected into HTML templates
// before fixed-layout rendering.
//
// Styles are Go text/template sources rendered with the page settings
// (size, margins, background image). The built-in "page" style ships in the
// binary; a custom directory can override it:
//
//	{basePath}/
//	└── styles/
//	    └── {name}.css
//
// AssetResolver tries the custom directory first and falls back to the
// embedded style when the name is not defined there. Names are validated
// and resolved paths must stay under the base directory.
package assets
