package reports

import (
	"fmt"
	"time"
)

// typeConfig carries everything that differs per report category: the
// analysis-prompt kind, the field set a submission must contain, and the
// mapper that denormalizes the payload into the uniform storage shape.
type typeConfig struct {
	Kind     string
	Required []string
	Storage  func(data map[string]any) map[string]any
}

var typeConfigs = map[ReportType]typeConfig{
	TypeRoutineLab: {
		Kind:     "routineLab",
		Required: []string{"cardNo", "reportDate", "resultList"},
		Storage: func(d map[string]any) map[string]any {
			return map[string]any{"result_list": d["resultList"]}
		},
	},
	TypeMicrobiology: {
		Kind: "microbiology",
		Required: []string{"cardNo", "reportDate", "microbeResultList",
			"bacterialResultList", "drugSensitivityList"},
		Storage: func(d map[string]any) map[string]any {
			return map[string]any{
				"microbe_result_list":       d["microbeResultList"],
				"bacterial_result_list":     d["bacterialResultList"],
				"drug_sensitivity_list":     d["drugSensitivityList"],
				"diagnosis_date":            d["diagnosisDate"],
				"test_result_code":          d["testResultCode"],
				"test_result_name":          d["testResultName"],
				"test_quantify_result":      d["testQuantifyResult"],
				"test_quantify_result_unit": d["testQuantifyResultUnit"],
			}
		},
	},
	TypeExamination: {
		Kind:     "examination",
		Required: []string{"cardNo", "reportDate", "examObservation", "examResult"},
		Storage: func(d map[string]any) map[string]any {
			return map[string]any{
				"exam_result_code":          d["examResultCode"],
				"exam_result_name":          d["examResultName"],
				"exam_quantify_result":      d["examQuantifyResult"],
				"exam_quantify_result_unit": d["examQuantifyResultUnit"],
				"exam_observation":          d["examObservation"],
				"exam_result":               d["examResult"],
			}
		},
	},
	TypePathology: {
		Kind:     "pathology",
		Required: []string{"cardNo", "reportDate", "examObservation", "examResult"},
		Storage: func(d map[string]any) map[string]any {
			return map[string]any{
				"chief_complaint":           d["chiefComplaint"],
				"symptom_describe":          d["symptomDescribe"],
				"symptom_start_time":        d["symptomStartTime"],
				"symptom_end_time":          d["symptomEndTime"],
				"exam_result_code":          d["examResultCode"],
				"exam_result_name":          d["examResultName"],
				"exam_quantify_result":      d["examQuantifyResult"],
				"exam_quantify_result_unit": d["examQuantifyResultUnit"],
				"diagnosis_describe":        d["diagnosisDescribe"],
				"exam_observation":          d["examObservation"],
				"exam_result":               d["examResult"],
			}
		},
	},
}

// Kind returns the analysis-prompt kind for the category, or "" when unknown.
func (t ReportType) Kind() string { return typeConfigs[t].Kind }

// analysisFields lists the optional fields copied into the analysis input
// beyond the required set, per category.
var analysisFields = map[ReportType][]string{
	TypeMicrobiology: {"diagnosisDate", "testResultCode", "testResultName",
		"testQuantifyResult", "testQuantifyResultUnit"},
	TypeExamination: {"examResultCode", "examResultName", "examQuantifyResult",
		"examQuantifyResultUnit"},
	TypePathology: {"examResultCode", "examResultName", "examQuantifyResult",
		"examQuantifyResultUnit", "chiefComplaint", "symptomDescribe",
		"symptomStartTime", "symptomEndTime", "diagnosisDescribe"},
}

// ValidationError reports a missing required field. It is never persisted and
// maps to a 400-class response at the boundary.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Normalized is the output of Normalize: the flattened camelCase view used to
// build generator prompts, and the snake_case payload written to storage.
type Normalized struct {
	Kind          string
	AnalysisInput map[string]any
	StorageData   map[string]any
	ReportDate    string
}

// Normalize validates the submission against its category's required field set
// and derives the two canonical views. A submission with no report date gets
// the current timestamp as a fixed-width numeric string. Normalizing the same
// submission twice yields identical output.
func Normalize(sub Submission, now time.Time) (*Normalized, error) {
	cfg, ok := typeConfigs[sub.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported report type: %s", sub.Type)
	}

	data := make(map[string]any, len(sub.Data)+2)
	for k, v := range sub.Data {
		data[k] = v
	}
	reportDate := sub.ReportDate
	if reportDate == "" {
		reportDate = now.Format("20060102150405")
	}
	data["cardNo"] = sub.CardNo
	data["reportDate"] = reportDate

	for _, field := range cfg.Required {
		if _, ok := data[field]; !ok {
			return nil, &ValidationError{Field: field}
		}
	}

	analysis := map[string]any{
		"cardNo":     sub.CardNo,
		"reportDate": reportDate,
	}
	switch sub.Type {
	case TypeRoutineLab:
		analysis["resultList"] = data["resultList"]
	case TypeMicrobiology:
		analysis["microbeResultList"] = data["microbeResultList"]
		analysis["bacterialResultList"] = data["bacterialResultList"]
		analysis["drugSensitivityList"] = data["drugSensitivityList"]
		analysis["deptCode"] = sub.DeptCode
		analysis["deptName"] = sub.DeptName
		analysis["diagnosisCode"] = sub.DiagnosisCode
		analysis["diagnosisName"] = sub.DiagnosisName
	case TypeExamination, TypePathology:
		if sub.PatientNo != "" {
			analysis["patientNo"] = sub.PatientNo
		}
		analysis["examObservation"] = data["examObservation"]
		analysis["examResult"] = data["examResult"]
	}
	for _, field := range analysisFields[sub.Type] {
		if v, ok := data[field]; ok {
			analysis[field] = v
		}
	}

	return &Normalized{
		Kind:          cfg.Kind,
		AnalysisInput: analysis,
		StorageData:   cfg.Storage(data),
		ReportDate:    reportDate,
	}, nil
}
