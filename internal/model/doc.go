// Package model defines the data structures shared by the crawler, the
// reports and the archive.
//
// This package contains the following main types:
//   - Export: the aggregated result of one crawl run
//   - PageRecord: one crawled page (canonical URL and paragraph text)
//   - PageFailure: a page that was skipped because of an error
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler produces exports while report, database and tui
// consume them, so centralizing the types prevents import cycles.
//
// The models are serializable to JSON for report output and storage.
package model
