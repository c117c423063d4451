package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labSubmission() Submission {
	return Submission{
		CardNo:     "CARD001",
		ReportDate: "20250110093000",
		Type:       TypeRoutineLab,
		Data: map[string]any{
			"resultList": []any{
				map[string]any{"name": "WBC", "value": "6.2", "unit": "10^9/L", "reference": "4-10"},
			},
		},
	}
}

func TestNormalizeRoutineLab(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

	norm, err := Normalize(labSubmission(), now)
	require.NoError(t, err)

	assert.Equal(t, "routineLab", norm.Kind)
	assert.Equal(t, "20250110093000", norm.ReportDate)
	assert.Equal(t, "CARD001", norm.AnalysisInput["cardNo"])
	assert.Contains(t, norm.AnalysisInput, "resultList")
	assert.Contains(t, norm.StorageData, "result_list")
}

func TestNormalizeMissingRequiredField(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		sub     Submission
		missing string
	}{
		{
			name:    "routine lab without results",
			sub:     Submission{CardNo: "C1", Type: TypeRoutineLab, Data: map[string]any{}},
			missing: "resultList",
		},
		{
			name: "microbiology without drug sensitivity",
			sub: Submission{CardNo: "C1", Type: TypeMicrobiology, Data: map[string]any{
				"microbeResultList":   []any{},
				"bacterialResultList": []any{},
			}},
			missing: "drugSensitivityList",
		},
		{
			name: "examination without observation",
			sub: Submission{CardNo: "C1", Type: TypeExamination, Data: map[string]any{
				"examResult": "normal",
			}},
			missing: "examObservation",
		},
		{
			name: "pathology without result",
			sub: Submission{CardNo: "C1", Type: TypePathology, Data: map[string]any{
				"examObservation": "sample observed",
			}},
			missing: "examResult",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.sub, now)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.missing, verr.Field)
		})
	}
}

func TestNormalizeUnknownType(t *testing.T) {
	_, err := Normalize(Submission{CardNo: "C1", Type: ReportType("genomics")}, time.Now())
	assert.Error(t, err)
}

func TestNormalizeDefaultsReportDate(t *testing.T) {
	now := time.Date(2025, 3, 5, 14, 7, 9, 0, time.UTC)
	sub := labSubmission()
	sub.ReportDate = ""

	norm, err := Normalize(sub, now)
	require.NoError(t, err)
	assert.Equal(t, "20250305140709", norm.ReportDate)
	assert.Equal(t, "20250305140709", norm.AnalysisInput["reportDate"])
}

func TestNormalizeIsIdempotent(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	sub := labSubmission()

	first, err := Normalize(sub, now)
	require.NoError(t, err)
	second, err := Normalize(sub, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// the submission payload itself must stay untouched
	assert.NotContains(t, sub.Data, "cardNo")
}

func TestNormalizePathologyStorageShape(t *testing.T) {
	sub := Submission{
		CardNo:        "CARD9",
		PatientNo:     "P9",
		ReportDate:    "20250101120000",
		Type:          TypePathology,
		DiagnosisName: "biopsy",
		Data: map[string]any{
			"examObservation": "tissue sample with atypical cells",
			"examResult":      "further staining advised",
			"chiefComplaint":  "persistent cough",
		},
	}

	norm, err := Normalize(sub, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "tissue sample with atypical cells", norm.StorageData["exam_observation"])
	assert.Equal(t, "persistent cough", norm.StorageData["chief_complaint"])
	assert.Equal(t, "P9", norm.AnalysisInput["patientNo"])
}

func TestReportTypeValid(t *testing.T) {
	assert.True(t, TypeRoutineLab.Valid())
	assert.True(t, TypePathology.Valid())
	assert.False(t, ReportType("imaging").Valid())
	assert.False(t, ReportType("").Valid())
}
