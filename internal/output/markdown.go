package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/JakeFAU/contactcrawler/internal/crawler"
)

type markdownWriter struct{}

func (markdownWriter) Extension() string { return ".md" }

// Write emits a report with run totals, the email table and failed pages.
func (markdownWriter) Write(w io.Writer, pages []crawler.PageResult) error {
	agg := crawler.NewAggregator()
	for _, p := range pages {
		agg.Record(p)
	}
	summary := agg.Summary()

	md := markdown.NewMarkdown(w)
	md.H1("Contact Crawl Results")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Pages processed", strconv.Itoa(summary.PagesProcessed)},
			{"Successful pages", strconv.Itoa(summary.PagesSucceeded)},
			{"Failed pages", strconv.Itoa(summary.PagesFailed)},
			{"Total emails found", strconv.Itoa(summary.EmailsFound)},
		},
	})
	md.PlainText("")

	md.H2("Emails")
	md.PlainText("")
	if tableRows := rows(pages); len(tableRows) > 0 {
		md.Table(markdown.TableSet{
			Header: tableHeader,
			Rows:   tableRows,
		})
	} else {
		md.PlainText("No email addresses found.")
	}
	md.PlainText("")

	var failures []string
	for _, p := range pages {
		if p.Status == crawler.StatusError {
			failures = append(failures, fmt.Sprintf("%s: %s", p.URL, p.ErrorDetail))
		}
	}
	if len(failures) > 0 {
		md.H2("Errors")
		md.PlainText("")
		md.BulletList(failures...)
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("build markdown: %w", err)
	}
	return nil
}
