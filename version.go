// Package glyphrun executes glyph-language snippets and renders their
// results and documentation for chat front-ends.
package glyphrun

// Version is the glyphrun release version.
const Version = "0.1.0"
