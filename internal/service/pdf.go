package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// PDFDecoder turns raw PDF bytes into per-page text, page 1 first
type PDFDecoder interface {
	DecodePages(data []byte) ([]string, error)
}

// LedongthucDecoder decodes PDFs with github.com/ledongthuc/pdf
type LedongthucDecoder struct{}

func NewPDFDecoder() *LedongthucDecoder {
	return &LedongthucDecoder{}
}

// DecodePages returns the text of each page. Within a page, text items
// (lines of the page's plain text) are trimmed and joined with a single space.
func (d *LedongthucDecoder) DecodePages(data []byte) (pages []string, err error) {
	// The parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: decoder panic: %v", ErrParseFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, classifyPDFError(err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)

	var lastErr error
	failed := 0

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Int("page", i).Err(err).Msg("Failed to extract text from PDF page")
			lastErr = err
			failed++
			pages = append(pages, "")
			continue
		}

		pages = append(pages, joinTextItems(text))
	}

	// A document whose every page failed is unreadable, not empty
	if numPages > 0 && failed == numPages {
		return nil, fmt.Errorf("%w: no page could be decoded: %w", ErrParseFailed, lastErr)
	}

	return pages, nil
}

// classifyPDFError maps decoder open failures onto the extraction taxonomy
func classifyPDFError(err error) error {
	if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(strings.ToLower(err.Error()), "encrypt") {
		return fmt.Errorf("%w: %v", ErrPasswordProtected, err)
	}
	return fmt.Errorf("%w: %w", ErrParseFailed, err)
}

// joinTextItems collapses the line-broken output of one page into a single line
func joinTextItems(pageText string) string {
	items := strings.Split(pageText, "\n")

	kept := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, " ")
}

// joinPages concatenates page text with newlines and trims the result
func joinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}
