// Package tui provides the interactive terminal shell of sitescrape.
//
// The shell is a Bubbletea program: the user types a site URL, watches
// the pages being extracted, stops the run at any time and saves the
// export of the latest completed or cancelled run to a text file.
//
// The crawl itself runs in a session.Session; the model only reads
// snapshots and sends start/stop requests, so the interface stays
// responsive while pages are fetched.
package tui
