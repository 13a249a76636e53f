package crawler

import "slices"

// Summary holds run totals.
type Summary struct {
	PagesProcessed int
	PagesSucceeded int
	PagesFailed    int
	EmailsFound    int
	RobotsSkipped  int
}

// Aggregator collects page results in the order pages were fetched.
type Aggregator struct {
	results []PageResult
	skipped []string
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends a page result.
func (a *Aggregator) Record(result PageResult) {
	a.results = append(a.results, result)
}

// RecordSkipped notes a URL that robots.txt disallowed.
func (a *Aggregator) RecordSkipped(rawURL string) {
	a.skipped = append(a.skipped, rawURL)
}

// Results returns a copy of the recorded results.
func (a *Aggregator) Results() []PageResult {
	return slices.Clone(a.results)
}

// Skipped returns the URLs disallowed by robots.txt.
func (a *Aggregator) Skipped() []string {
	return slices.Clone(a.skipped)
}

// Summary computes totals over everything recorded so far.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		PagesProcessed: len(a.results),
		RobotsSkipped:  len(a.skipped),
	}
	for _, r := range a.results {
		if r.Status == StatusSuccess {
			s.PagesSucceeded++
		} else {
			s.PagesFailed++
		}
		s.EmailsFound += r.EmailsFound()
	}
	return s
}
