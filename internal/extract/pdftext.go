package extract

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// TextSource turns a stored file into extractable plain text. The document
// extractor only depends on this interface, so the PDF implementation can be
// swapped for fixture text in tests.
type TextSource interface {
	ExtractText(filePath string) (string, error)
}

// PDFTextSource extracts plain text from PDF files.
type PDFTextSource struct{}

func (PDFTextSource) ExtractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: opening pdf: %v", ErrSourceUnreadable, err)
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extracting pdf text: %v", ErrSourceUnreadable, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("%w: reading pdf text: %v", ErrSourceUnreadable, err)
	}
	return buf.String(), nil
}

// PlainTextSource reads the file bytes as-is. Used for .txt dumps and as the
// fixture-backed source in tests.
type PlainTextSource struct{}

func (PlainTextSource) ExtractText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	return string(data), nil
}
