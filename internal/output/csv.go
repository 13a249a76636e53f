package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/JakeFAU/contactcrawler/internal/crawler"
)

type csvWriter struct{}

func (csvWriter) Extension() string { return ".csv" }

// Write emits a header row followed by one row per email entry.
func (csvWriter) Write(w io.Writer, pages []crawler.PageResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows(pages)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
