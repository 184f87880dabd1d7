package models

import "time"

type UploadStatus string

const (
	StatusIdle      UploadStatus = "idle"
	StatusUploading UploadStatus = "uploading"
	StatusSuccess   UploadStatus = "success"
	StatusError     UploadStatus = "error"
)

type Widget string

const (
	WidgetScore   Widget = "score"
	WidgetEnhance Widget = "enhance"
)

type ErrorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ScoreView is the per-session state of the ATS score widget.
type ScoreView struct {
	Status     UploadStatus `json:"status"`
	Generation uint64       `json:"generation"`
	Result     *MatchResult `json:"result,omitempty"`
	Error      *ErrorView   `json:"error,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// EnhanceView is the per-session state of the enhancer widget.
type EnhanceView struct {
	Status        UploadStatus `json:"status"`
	Generation    uint64       `json:"generation"`
	Suggestions   []string     `json:"suggestions,omitempty"`
	Download      *DownloadRef `json:"download,omitempty"`
	DocumentError *ErrorView   `json:"document_error,omitempty"`
	Error         *ErrorView   `json:"error,omitempty"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewScoreView() *ScoreView {
	return &ScoreView{Status: StatusIdle}
}

func NewEnhanceView() *EnhanceView {
	return &EnhanceView{Status: StatusIdle}
}
