package models

// MatchResult is the body returned by the match-scoring service.
type MatchResult struct {
	Score           int      `json:"score" validate:"gte=0,lte=100"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// MatchResponse is the raw wire shape; Score is a pointer so a missing field
// can be told apart from a zero score.
type MatchResponse struct {
	Score           *int     `json:"score"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// EnhanceResponse is the raw wire shape of the enhancement service.
type EnhanceResponse struct {
	Suggestions []string `json:"suggestions"`
	EnhancedPDF *string  `json:"enhanced_pdf"`
}

// EnhanceResult holds decoded suggestions and document. Document is nil when
// the service sent no enhanced_pdf. Either part may be present without the
// other.
type EnhanceResult struct {
	Suggestions []string
	Document    []byte
}

// ServiceErrorBody is what the resume services send with a non-2xx status.
type ServiceErrorBody struct {
	Error string `json:"error"`
}

type ScoreTier string

const (
	TierSuccess ScoreTier = "success"
	TierWarning ScoreTier = "warning"
	TierDanger  ScoreTier = "danger"
)

var tierColors = map[ScoreTier]string{
	TierSuccess: "#28a745",
	TierWarning: "#ffc107",
	TierDanger:  "#dc3545",
}

// TierForScore maps a score to its gauge tier. Lower bounds are inclusive.
func TierForScore(score int) ScoreTier {
	switch {
	case score >= 80:
		return TierSuccess
	case score >= 50:
		return TierWarning
	default:
		return TierDanger
	}
}

func (t ScoreTier) Color() string {
	return tierColors[t]
}

// ScoreColor returns the gauge fill color for a score.
func ScoreColor(score int) string {
	return TierForScore(score).Color()
}
