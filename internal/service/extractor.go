package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/yourusername/prepiq-api/internal/model"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Extractor pulls resume text out of uploaded files
type Extractor struct {
	pdf      PDFDecoder // nil when PDF parsing is disabled
	maxBytes int64
}

func NewExtractor(pdf PDFDecoder, maxBytes int64) *Extractor {
	return &Extractor{pdf: pdf, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload
func (e *Extractor) MaxBytes() int64 {
	return e.maxBytes
}

// Extract reads the file and returns its text.
// Unsupported formats yield a placeholder Extraction rather than an error.
func (e *Extractor) Extract(ctx context.Context, fileName, declaredType string, r io.Reader) (*model.Extraction, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, ErrFileTooLarge
	}

	type result struct {
		ext *model.Extraction
		err error
	}
	done := make(chan result, 1)

	go func() {
		ext, err := e.extractBytes(fileName, declaredType, data)
		done <- result{ext, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, ctx.Err())
	case res := <-done:
		return res.ext, res.err
	}
}

func (e *Extractor) extractBytes(fileName, declaredType string, data []byte) (*model.Extraction, error) {
	format := DetectFormat(fileName, declaredType, data)

	log.Debug().
		Str("filename", fileName).
		Str("declaredType", declaredType).
		Str("format", format).
		Int("bytes", len(data)).
		Msg("Extracting resume text")

	switch format {
	case model.FormatText:
		text, err := decodeText(data)
		if err != nil {
			return nil, err
		}
		return &model.Extraction{Text: text, FileName: fileName, Format: format}, nil

	case model.FormatPDF:
		if e.pdf == nil {
			return nil, ErrParserUnavailable
		}
		pages, err := e.pdf.DecodePages(data)
		if err != nil {
			return nil, err
		}
		text := joinPages(pages)
		if text == "" {
			return nil, ErrEmptyDocument
		}
		return &model.Extraction{Text: text, FileName: fileName, Format: format, Pages: len(pages)}, nil

	case model.FormatDOCX:
		text, err := extractDocxText(data)
		if err != nil || text == "" {
			log.Warn().Err(err).Str("filename", fileName).Msg("DOCX extraction failed, returning placeholder")
			return placeholderExtraction(fileName), nil
		}
		return &model.Extraction{Text: text, FileName: fileName, Format: format}, nil

	default:
		return placeholderExtraction(fileName), nil
	}
}

// DetectFormat resolves the resume format from the extension, then the
// declared media type, then the file's content. Plain text is only sniffed
// for names without an extension.
func DetectFormat(fileName, declaredType string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".txt", ".md":
		return model.FormatText
	case ".pdf":
		return model.FormatPDF
	case ".docx":
		return model.FormatDOCX
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(declaredType, ";")[0]))
	switch declared {
	case mimeText, "text/markdown":
		return model.FormatText
	case mimePDF:
		return model.FormatPDF
	case mimeDOCX:
		return model.FormatDOCX
	}

	detected := mimetype.Detect(data)
	switch {
	case detected.Is(mimePDF):
		return model.FormatPDF
	case detected.Is(mimeDOCX):
		return model.FormatDOCX
	}

	// .rtf, .odt and friends are text-like but not readable as plain text
	if ext != "" {
		return model.FormatOther
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(mimeText) {
			return model.FormatText
		}
	}
	return model.FormatOther
}

// decodeText reads bytes as UTF-8, honoring a UTF-8 or UTF-16 byte order mark
func decodeText(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("%w: decoding text: %w", ErrReadFailed, err)
	}
	return string(out), nil
}

func placeholderExtraction(fileName string) *model.Extraction {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = "this file type"
	}

	return &model.Extraction{
		Text: fmt.Sprintf(
			"[IMPORTED FILE: %s]\n\n(Automatic text extraction is not supported for %s. Please copy-paste the text content for the best analysis results.)",
			fileName, ext,
		),
		FileName:    fileName,
		Format:      model.FormatOther,
		Placeholder: true,
	}
}
