package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrNoPages = errors.New("PDF has no pages")

type PDFInspector interface {
	PageCount(data []byte) (int, error)
}

type pdfInspector struct{}

func NewPDFInspector() PDFInspector {
	return &pdfInspector{}
}

// PageCount opens an in-memory PDF and counts the pages that resolve to a
// page object. A document without any is an error.
func (p *pdfInspector) PageCount(data []byte) (count int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return 0, fmt.Errorf("not a PDF document")
	}

	// The reader panics on some broken xref tables.
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		if !r.Page(pageIndex).V.IsNull() {
			count++
		}
	}
	if count == 0 {
		return 0, ErrNoPages
	}
	return count, nil
}
