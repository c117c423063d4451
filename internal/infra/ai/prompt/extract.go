package prompt

import "strings"

// Keyword sets matched against the generated analysis text. The templates
// instruct the model to structure its answer with these section vocabularies.
var (
	risingWords   = []string{"rising", "increase", "elevated", "higher"}
	fallingWords  = []string{"falling", "decrease", "reduced", "declin", "lower"}
	abnormalWords = []string{"abnormal", "out of range", "exceed", "above the reference",
		"below the reference"}
	adviceWords = []string{"recommend", "suggest", "advise"}

	trendSectionWords  = []string{"trend", "change", "progress"}
	riskSectionWords   = []string{"risk", "assess", "concern"}
	adviceSectionWords = []string{"recommend", "suggest", "follow-up", "attention"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// KeyChanges extracts coarse structured signals from an analysis text.
func KeyChanges(text string) map[string][]string {
	lower := strings.ToLower(text)
	changes := map[string][]string{
		"significant_changes": {},
		"trends":              {},
		"abnormal_values":     {},
		"recommendations":     {},
	}
	if containsAny(lower, risingWords) {
		changes["trends"] = append(changes["trends"], "indicators rising")
	}
	if containsAny(lower, fallingWords) {
		changes["trends"] = append(changes["trends"], "indicators falling")
	}
	if containsAny(lower, abnormalWords) {
		changes["abnormal_values"] = append(changes["abnormal_values"], "abnormal values present")
	}
	if containsAny(lower, adviceWords) {
		changes["recommendations"] = append(changes["recommendations"], "attention required")
	}
	return changes
}

// Sections splits an analysis text into trend / risk / recommendation parts by
// paragraph keyword matching. Empty parts get fixed placeholders so the
// response fields are always populated.
func Sections(text string) (trend, risk, recommendations string) {
	for _, section := range strings.Split(text, "\n\n") {
		lower := strings.ToLower(section)
		switch {
		case containsAny(lower, trendSectionWords):
			trend += section + "\n"
		case containsAny(lower, riskSectionWords):
			risk += section + "\n"
		case containsAny(lower, adviceSectionWords):
			recommendations += section + "\n"
		}
	}
	trend = strings.TrimSpace(trend)
	risk = strings.TrimSpace(risk)
	recommendations = strings.TrimSpace(recommendations)
	if trend == "" {
		trend = "No clear trend identified"
	}
	if risk == "" {
		risk = "Risk assessment needs more data"
	}
	if recommendations == "" {
		recommendations = "Consult a physician for advice"
	}
	return trend, risk, recommendations
}

// Confidence labels a comparison result from the amount of history considered
// and the length of the produced analysis.
func Confidence(historyCount, analysisLen int) string {
	switch {
	case historyCount >= 5 && analysisLen > 500:
		return "high"
	case historyCount >= 3 && analysisLen > 300:
		return "moderate"
	default:
		return "low"
	}
}
