// Package pdfx extracts page text from PDF files using go-fitz (MuPDF).
package pdfx

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/askpdf/askpdf/docstore"
)

// ExtractText opens the PDF at path and returns one Page per document page,
// in order, numbered from 1. Pages that yield no text come back with an
// empty Text rather than an error.
func ExtractText(path string) ([]docstore.Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if count == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages := make([]docstore.Page, 0, count)
	for i := 0; i < count; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i+1, err)
		}
		pages = append(pages, docstore.Page{Number: i + 1, Text: text})
	}
	return pages, nil
}
