package crawler

import "sync"

// Frontier is the set-backed work queue of one crawl run.
// It tracks every discovered canonical URL and every URL already handed out
// by Drain, and guarantees that a URL is handed out at most once no matter
// how many times it is offered.
//
// Traversal order is an implementation detail (currently FIFO) and callers
// must not depend on it. Offer and Drain are mutually exclusive, so the
// at-most-once guarantee also holds if several workers share a frontier.
type Frontier struct {
	// discovered holds every URL ever accepted by Offer.
	discovered map[string]struct{}

	// visited holds every URL returned by Drain. It only grows.
	visited map[string]struct{}

	// pending holds discovered URLs not yet drained.
	pending []string

	mu sync.Mutex
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		discovered: make(map[string]struct{}),
		visited:    make(map[string]struct{}),
		pending:    make([]string, 0),
	}
}

// Seed adds the starting URL of a run.
func (f *Frontier) Seed(u string) {
	f.Offer(u)
}

// Offer adds u to the frontier.
// It returns true if u was not known before, false if it was already
// discovered (in which case nothing changes).
func (f *Frontier) Offer(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.discovered[u]; ok {
		return false
	}
	f.discovered[u] = struct{}{}
	f.pending = append(f.pending, u)
	return true
}

// Drain removes and returns the next unvisited URL and marks it visited.
// The boolean is false when the frontier is exhausted.
func (f *Frontier) Drain() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.pending) > 0 {
		u := f.pending[0]
		f.pending[0] = ""
		f.pending = f.pending[1:]

		if _, done := f.visited[u]; done {
			continue
		}
		f.visited[u] = struct{}{}
		return u, true
	}
	return "", false
}

// IsVisited reports whether u has already been handed out by Drain.
func (f *Frontier) IsVisited(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[u]
	return ok
}

// Stats returns the current frontier counters.
func (f *Frontier) Stats() FrontierStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FrontierStats{
		Discovered: len(f.discovered),
		Visited:    len(f.visited),
		Pending:    len(f.pending),
	}
}

// FrontierStats contains frontier counters.
type FrontierStats struct {
	// Discovered is the number of distinct URLs ever offered.
	Discovered int

	// Visited is the number of URLs handed out by Drain.
	Visited int

	// Pending is the number of URLs waiting to be drained.
	Pending int
}
