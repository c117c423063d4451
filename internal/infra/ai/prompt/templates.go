package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Degraded is the static narrative substituted when the text backend is
// unreachable or errors. The report is still accepted and persisted.
const Degraded = "AI analysis is temporarily unavailable. The report has been received and stored; please retry the analysis later or consult a physician directly."

// persona returns the specialist framing for a report kind.
func persona(kind string) string {
	switch kind {
	case "routineLab":
		return "a clinical laboratory medicine specialist"
	case "microbiology":
		return "a clinical microbiology and infectious disease specialist"
	case "examination":
		return "an imaging and clinical examination specialist"
	case "pathology":
		return "a pathology specialist"
	default:
		return "a medical AI specialist"
	}
}

// focusPoints returns the per-kind analysis requirements, phrased for the
// comparative case when hasHistory is set.
func focusPoints(kind string, hasHistory bool) string {
	switch kind {
	case "routineLab":
		if hasHistory {
			return `1. Abnormal indicators, their clinical significance and change trend
2. Disease risk and progression assessment
3. Diagnostic, treatment and lifestyle recommendations`
		}
		return `1. Abnormal indicators and their clinical significance
2. Disease risk assessment
3. Diagnostic, treatment and lifestyle recommendations`
	case "microbiology":
		if hasHistory {
			return `1. Pathogen identification, pathogenicity and change trend
2. Drug sensitivity results and resistance development
3. Infection control effectiveness and treatment recommendations`
		}
		return `1. Pathogen identification and pathogenicity assessment
2. Drug sensitivity results and resistance analysis
3. Infection control and treatment recommendations`
	case "examination":
		if hasHistory {
			return `1. Objective findings and their change against the prior study
2. Clinical significance of the impression and its change
3. Diagnosis, progression and follow-up recommendations`
		}
		return `1. Interpretation of the objective findings
2. Clinical significance of the impression
3. Diagnosis and differential diagnosis recommendations`
	case "pathology":
		if hasHistory {
			return `1. Pathological morphology and its change
2. Diagnosis, clinical significance and progression assessment
3. Prognosis assessment and treatment recommendations`
		}
		return `1. Interpretation of pathological morphology
2. Diagnosis and clinical significance
3. Prognosis assessment and treatment recommendations`
	default:
		return `1. Key indicator interpretation and abnormality identification
2. Clinical significance analysis
3. Follow-up recommendations`
	}
}

// Analysis builds the single-report prompt, comparative when a historical
// snapshot is supplied.
func Analysis(kind string, input map[string]any, historyDate, historyContent string) string {
	hasHistory := historyContent != ""
	mode := "analyze"
	if hasHistory {
		mode = "compare against the prior record and analyze"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "As %s, %s the following report.\n\n", persona(kind), mode)
	fmt.Fprintf(&b, "Current report:\n%s\n", asJSON(input))
	if hasHistory {
		fmt.Fprintf(&b, "\nPrior record (dated %s):\n%s\n", historyDate, historyContent)
	}
	fmt.Fprintf(&b, "\nAnalysis points:\n%s\n\n", focusPoints(kind, hasHistory))
	if hasHistory {
		b.WriteString("Emphasize the magnitude of indicator changes and whether the condition is improving or worsening.\n")
	} else {
		b.WriteString("Note: this is the first report for this patient; no comparison data is available.\n")
	}
	b.WriteString("Answer in professional but accessible language, structured into trend analysis, risk assessment and recommendations sections.")
	return b.String()
}

// Comparison builds the explicit multi-report comparison prompt.
func Comparison(cardNo, kind, period, currentDate, currentText string, history []string, historyDates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, skilled at analyzing change trends across a patient's historical reports.\n", persona(kind))
	b.WriteString(`Compare the current report against the historical reports.

Requirements:
1. Identify the change trend of key indicators (rising, falling, stable)
2. Assess the clinical significance of abnormal indicators
3. Analyze disease progression and potential risks
4. Provide individualized medical recommendations
5. Flag indicator changes that need special attention

Structure the answer into trend analysis, risk assessment and recommendations sections.

`)
	fmt.Fprintf(&b, "Patient card number: %s\nComparison period: %s\n\n", cardNo, period)
	fmt.Fprintf(&b, "Current report (dated %s):\n%s\n", currentDate, currentText)
	fmt.Fprintf(&b, "\nHistorical reports (%d total):\n", len(history))
	for i, h := range history {
		date := ""
		if i < len(historyDates) {
			date = historyDates[i]
		}
		fmt.Fprintf(&b, "\nHistorical report %d (dated %s):\n%s\n", i+1, date, h)
	}
	b.WriteString("\nProvide a detailed comparative analysis.")
	return b.String()
}

// FormatStored renders a stored (snake_case) payload as readable structured
// text for prompt embedding. Unknown shapes fall back to indented JSON.
func FormatStored(kind string, data map[string]any) string {
	var b strings.Builder
	switch kind {
	case "routineLab":
		list, ok := data["result_list"].([]any)
		if !ok {
			break
		}
		b.WriteString("Test items and results:\n")
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %v: %v %v", m["name"], m["value"], m["unit"])
			if ref, ok := m["reference"]; ok && ref != "" {
				fmt.Fprintf(&b, " (reference: %v)", ref)
			}
			b.WriteString("\n")
		}
		return b.String()
	case "microbiology":
		b.WriteString("Microbiology results:\n")
		writeField(&b, "Culture", data["microbe_result_list"])
		writeField(&b, "Bacterial identification", data["bacterial_result_list"])
		writeField(&b, "Drug sensitivity", data["drug_sensitivity_list"])
		return b.String()
	case "examination":
		b.WriteString("Examination results:\n")
		writeField(&b, "Objective findings", data["exam_observation"])
		writeField(&b, "Impression", data["exam_result"])
		return b.String()
	case "pathology":
		b.WriteString("Pathology results:\n")
		writeField(&b, "Diagnosis", data["diagnosis_name"])
		writeField(&b, "Microscopic findings", data["exam_observation"])
		writeField(&b, "Pathological diagnosis", data["exam_result"])
		return b.String()
	}
	return asJSON(data)
}

func writeField(b *strings.Builder, label string, v any) {
	if v == nil || v == "" {
		return
	}
	fmt.Fprintf(b, "%s: %v\n", label, v)
}

func asJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
