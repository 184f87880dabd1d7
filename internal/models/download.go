package models

import "time"

const (
	EnhancedFilename = "Enhanced_Resume.pdf"
	PDFContentType   = "application/pdf"
)

// DownloadRef points at a decoded document held for one session.
type DownloadRef struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	PageCount int       `json:"page_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Download is the store-side record behind a DownloadRef.
type Download struct {
	DownloadRef
	Owner    string
	FilePath string
}
