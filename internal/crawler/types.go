package crawler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// PageStatus reports whether a page was fetched and parsed.
type PageStatus string

// Page status values written to every output format.
const (
	StatusSuccess PageStatus = "success"
	StatusError   PageStatus = "error"
)

// EmailEntry pairs one address with the name associated to it, if any.
type EmailEntry struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PageResult is the outcome of processing a single fetched URL.
// Build it with NewSuccessResult or NewErrorResult.
type PageResult struct {
	URL         string       `json:"url"`
	PageTitle   string       `json:"page_title"`
	Status      PageStatus   `json:"status"`
	ErrorDetail string       `json:"error_detail,omitempty"`
	Entries     []EmailEntry `json:"data"`
}

// NewSuccessResult builds a success result. Emails are lower-cased and
// duplicates are dropped, keeping the first entry seen.
func NewSuccessResult(url, title string, entries []EmailEntry) PageResult {
	seen := make(map[string]struct{}, len(entries))
	deduped := make([]EmailEntry, 0, len(entries))
	for _, entry := range entries {
		email := strings.ToLower(strings.TrimSpace(entry.Email))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		deduped = append(deduped, EmailEntry{Email: email, Name: strings.TrimSpace(entry.Name)})
	}
	return PageResult{
		URL:       url,
		PageTitle: title,
		Status:    StatusSuccess,
		Entries:   deduped,
	}
}

// NewErrorResult builds a result for a page that could not be processed.
func NewErrorResult(url string, err error) PageResult {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return PageResult{
		URL:         url,
		Status:      StatusError,
		ErrorDetail: detail,
		Entries:     []EmailEntry{},
	}
}

// EmailsFound returns the number of distinct addresses on the page.
func (p PageResult) EmailsFound() int {
	return len(p.Entries)
}

// MarshalJSON adds the derived emails_found field.
func (p PageResult) MarshalJSON() ([]byte, error) {
	type alias PageResult
	entries := p.Entries
	if entries == nil {
		entries = []EmailEntry{}
	}
	out := struct {
		alias
		EmailsFound int          `json:"emails_found"`
		Entries     []EmailEntry `json:"data"`
	}{
		alias:       alias(p),
		EmailsFound: len(entries),
		Entries:     entries,
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return data, nil
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Depth   int
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
