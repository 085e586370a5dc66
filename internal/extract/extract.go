// Package extract pulls plain text out of uploaded application
// documents so they can enter the same review flow as JSON submissions.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupported is returned for document types the review flow cannot
// ingest.
var ErrUnsupported = errors.New("unsupported document type")

// Text extracts plain text from an in-memory document. Only PDF is
// accepted; grant applications arrive either as JSON payloads or as PDF
// exports of the application form.
func Text(data []byte, fileName string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document")
	}
	if !isPDF(data, fileName) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(fileName))
	}
	return extractPDF(data)
}

func isPDF(data []byte, fileName string) bool {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return true
	}
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
