// Package output serializes crawl results to csv, json, excel or markdown
// files and prints the console summary.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JakeFAU/contactcrawler/internal/crawler"
)

// Supported output formats.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatExcel    = "excel"
	FormatMarkdown = "markdown"
)

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// tableHeader is shared by the row-oriented formats.
var tableHeader = []string{"url", "page_title", "email", "name", "status"}

// Writer serializes page results in one format.
type Writer interface {
	Write(w io.Writer, pages []crawler.PageResult) error
	// Extension is the file extension, including the dot.
	Extension() string
}

// New returns the Writer for format. Format names are case-insensitive.
func New(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return csvWriter{}, nil
	case FormatJSON:
		return jsonWriter{}, nil
	case FormatExcel:
		return excelWriter{}, nil
	case FormatMarkdown:
		return markdownWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile writes pages to base plus the format's extension and returns the
// path written. The file is created even when there are no results.
func WriteFile(format, base string, pages []crawler.PageResult) (path string, err error) {
	writer, err := New(format)
	if err != nil {
		return "", err
	}
	path = base
	if !strings.HasSuffix(strings.ToLower(base), writer.Extension()) {
		path = base + writer.Extension()
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file %s: %w", path, cerr)
		}
	}()

	if err := writer.Write(f, pages); err != nil {
		return "", fmt.Errorf("write %s output to %s: %w", format, path, err)
	}
	return path, nil
}

// rows flattens pages to one row per email entry. Pages without entries
// contribute no rows.
func rows(pages []crawler.PageResult) [][]string {
	var out [][]string
	for _, p := range pages {
		for _, e := range p.Entries {
			out = append(out, []string{p.URL, p.PageTitle, e.Email, e.Name, string(p.Status)})
		}
	}
	return out
}
