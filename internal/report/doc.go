// Package report provides export output in several formats.
//
// This package contains writers for different output formats:
//   - TextWriter: the bit-exact plain text export
//   - MarkdownWriter: a Markdown document for sharing
//   - JSONWriter: structured JSON output for tool integration
//
// Design decision: We separate report writing from the export data structure
// (which is in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
