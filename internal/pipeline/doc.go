// Package pipeline provides a framework for executing crawl steps in sequence.
//
// Every seed URL is carried through the pipeline as a Job. The standard
// steps crawl the site (CrawlStep) and archive the finished export
// (ArchiveStep); each step receives the job and can fill it in.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps (e.g., --no-save drops archiving)
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
//
// The pipeline supports both individual crawls and batch processing with
// concurrency control using errgroup.
package pipeline
