package content

import (
	"context"
	"fmt"
)

// Page is the result of fetching one monitored URL: the normalized
// comparison text, the raw HTML as served (kept for archiving) and a
// best-effort effective-date string for analyst context.
type Page struct {
	Text          string
	HTML          string
	EffectiveDate string
}

// Fetcher port (interface for content retrieval)
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// FetchError wraps network failures, timeouts and non-2xx responses.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
