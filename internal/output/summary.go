package output

import (
	"fmt"
	"io"

	"github.com/JakeFAU/contactcrawler/internal/crawler"
)

// summaryEntries is how many entries per page the console summary lists.
const summaryEntries = 5

// WriteSummary prints run totals and up to five entries per page.
func WriteSummary(w io.Writer, pages []crawler.PageResult, summary crawler.Summary) error {
	p := &printer{w: w}
	p.printf("\n=== SCRAPING SUMMARY ===\n")
	p.printf("Pages processed: %d\n", summary.PagesProcessed)
	p.printf("Successful pages: %d\n", summary.PagesSucceeded)
	p.printf("Total emails found: %d\n", summary.EmailsFound)
	if summary.RobotsSkipped > 0 {
		p.printf("Skipped by robots.txt: %d\n", summary.RobotsSkipped)
	}

	for _, page := range pages {
		p.printf("\n%s: %d emails (%s)\n", page.URL, page.EmailsFound(), page.Status)
		if page.ErrorDetail != "" {
			p.printf("  error: %s\n", page.ErrorDetail)
		}
		for i, entry := range page.Entries {
			if i == summaryEntries {
				p.printf("  ... and %d more\n", len(page.Entries)-summaryEntries)
				break
			}
			if entry.Name != "" {
				p.printf("  %s - %s\n", entry.Email, entry.Name)
			} else {
				p.printf("  %s\n", entry.Email)
			}
		}
	}
	if p.err != nil {
		return fmt.Errorf("write summary: %w", p.err)
	}
	return nil
}

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
