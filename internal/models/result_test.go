package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreColor(t *testing.T) {
	tests := []struct {
		score int
		tier  ScoreTier
		color string
	}{
		{0, TierDanger, "#dc3545"},
		{49, TierDanger, "#dc3545"},
		{50, TierWarning, "#ffc107"},
		{72, TierWarning, "#ffc107"},
		{79, TierWarning, "#ffc107"},
		{80, TierSuccess, "#28a745"},
		{100, TierSuccess, "#28a745"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierForScore(tt.score), "tier for %d", tt.score)
		assert.Equal(t, tt.color, ScoreColor(tt.score), "color for %d", tt.score)
	}
}
