package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JakeFAU/contactcrawler/internal/crawler"
)

type jsonWriter struct{}

func (jsonWriter) Extension() string { return ".json" }

// Write emits an indented array with every page, including failed ones.
func (jsonWriter) Write(w io.Writer, pages []crawler.PageResult) error {
	if pages == nil {
		pages = []crawler.PageResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
