// Package crawl: ordered URL set.
// Keeps discovered post URLs in first-seen order and drops repeats.
package crawl

// Queue is an insertion-ordered set of URLs.
type Queue struct {
	items []string
	seen  map[string]bool
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		seen: make(map[string]bool),
	}
}

// Add enqueues a URL if it hasn't been seen before. It reports whether the URL was new.
func (q *Queue) Add(url string) bool {
	if q.seen[url] {
		return false
	}
	q.seen[url] = true
	q.items = append(q.items, url)
	return true
}

// Len returns the number of unique URLs added.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns every URL in insertion order.
func (q *Queue) All() []string {
	return q.items
}
