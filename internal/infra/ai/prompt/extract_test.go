package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyChanges(t *testing.T) {
	text := "WBC shows a rising pattern and values are abnormal. We recommend a follow-up."
	changes := KeyChanges(text)

	assert.Contains(t, changes["trends"], "indicators rising")
	assert.Contains(t, changes["abnormal_values"], "abnormal values present")
	assert.Contains(t, changes["recommendations"], "attention required")
	assert.Empty(t, changes["significant_changes"])
}

func TestKeyChangesNeutralText(t *testing.T) {
	changes := KeyChanges("All parameters stable.")
	for _, bucket := range changes {
		assert.Empty(t, bucket)
	}
}

func TestSections(t *testing.T) {
	text := "The trend over three months shows gradual improvement.\n\n" +
		"Risk remains moderate given prior findings.\n\n" +
		"We suggest repeating the panel in six weeks."

	trend, risk, recs := Sections(text)
	assert.Contains(t, trend, "gradual improvement")
	assert.Contains(t, risk, "moderate")
	assert.Contains(t, recs, "repeating the panel")
}

func TestSectionsPlaceholders(t *testing.T) {
	trend, risk, recs := Sections("Nothing matches here.")
	assert.Equal(t, "No clear trend identified", trend)
	assert.Equal(t, "Risk assessment needs more data", risk)
	assert.Equal(t, "Consult a physician for advice", recs)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, "high", Confidence(5, 501))
	assert.Equal(t, "moderate", Confidence(3, 301))
	assert.Equal(t, "moderate", Confidence(5, 400))
	assert.Equal(t, "low", Confidence(2, 1000))
	assert.Equal(t, "low", Confidence(0, 0))
}

func TestAnalysisPromptWithHistory(t *testing.T) {
	p := Analysis("routineLab", map[string]any{"cardNo": "C1"}, "20250101", "prior lab text")
	assert.Contains(t, p, "prior lab text")
	assert.Contains(t, p, "20250101")
	assert.False(t, strings.Contains(p, "first report"), "comparative prompt should not carry the first-report note")
}

func TestAnalysisPromptWithoutHistory(t *testing.T) {
	p := Analysis("routineLab", map[string]any{"cardNo": "C1"}, "", "")
	assert.Contains(t, strings.ToLower(p), "first report")
}
