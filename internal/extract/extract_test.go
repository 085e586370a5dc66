package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestTextRejectsEmptyDocument(t *testing.T) {
	if _, err := Text(nil, "application.pdf"); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestTextRejectsNonPDF(t *testing.T) {
	_, err := Text([]byte("plain text content"), "application.txt")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextInvalidPDFBytes(t *testing.T) {
	// PDF magic bytes but no valid structure.
	_, err := Text([]byte("%PDF-1.7 garbage"), "application.pdf")
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
	if strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("corrupt pdf should not be classified unsupported: %v", err)
	}
}
