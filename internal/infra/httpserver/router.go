package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appcomparison "github.com/bryanwahyu/medreport-ai/internal/application/comparison"
	appreports "github.com/bryanwahyu/medreport-ai/internal/application/reports"
	domai "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
	domain "github.com/bryanwahyu/medreport-ai/internal/domain/reports"
	"github.com/bryanwahyu/medreport-ai/internal/middleware"
)

const serviceVersion = "1.0.0"

type Router struct {
	reportsSvc    *appreports.Service
	comparisonSvc *appcomparison.Service
	health        http.HandlerFunc
}

func NewRouter(reportsSvc *appreports.Service, comparisonSvc *appcomparison.Service, health http.HandlerFunc) http.Handler {
	r := &Router{reportsSvc: reportsSvc, comparisonSvc: comparisonSvc, health: health}
	mux := chi.NewRouter()

	mux.Get("/", r.wrap(r.handleIndex))
	mux.Get("/health", r.health)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/routine-lab", r.wrap(r.handleReport(domain.TypeRoutineLab)))
	mux.Post("/microbiology", r.wrap(r.handleReport(domain.TypeMicrobiology)))
	mux.Post("/examination", r.wrap(r.handleReport(domain.TypeExamination)))
	mux.Post("/pathology", r.wrap(r.handleReport(domain.TypePathology)))

	mux.Post("/compare-reports", r.wrap(r.handleCompare))
	mux.Post("/patient-history", r.wrap(r.handlePatientHistory))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap adapts error-returning handlers and recovers panics into the uniform
// failure envelope.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", req.Method, req.URL.Path, rec)
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"code":         "500",
					"error":        "internal server error",
					"processed_at": time.Now().Format(time.RFC3339),
				})
			}
		}()
		if err := h(w, req); err != nil {
			status := http.StatusInternalServerError
			var verr *middleware.ValidationError
			switch {
			case errors.As(err, &verr):
				status = http.StatusBadRequest
			case errors.Is(err, domai.ErrQuotaExceeded):
				status = http.StatusTooManyRequests
			}
			writeJSON(w, status, map[string]any{
				"code":         "500",
				"error":        err.Error(),
				"processed_at": time.Now().Format(time.RFC3339),
			})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// str pulls an optional string field out of a decoded JSON object.
func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// GET /
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "medreport-ai",
		"version": serviceVersion,
		"endpoints": []string{
			"POST /routine-lab",
			"POST /microbiology",
			"POST /examination",
			"POST /pathology",
			"POST /compare-reports",
			"POST /patient-history",
			"GET /health",
			"GET /metrics",
		},
	})
	return nil
}

// handleReport builds the intake handler for one report category. The body is
// decoded as a free-form object; field presence is what gets validated, so
// unknown fields pass through into storage untouched.
func (r *Router) handleReport(t domain.ReportType) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return fmt.Errorf("decoding request body: %w", err)
		}

		cardNo := middleware.SanitizeString(str(body, "cardNo"))
		if err := middleware.ValidateCardNo(cardNo); err != nil {
			writeResult(w, appreports.Result{
				Code:        "500",
				Status:      http.StatusBadRequest,
				CardNo:      cardNo,
				ProcessedAt: time.Now(),
				Err:         err.Error(),
			})
			return nil
		}

		sub := domain.Submission{
			CardNo:        cardNo,
			PatientNo:     str(body, "patientNo"),
			ReportDate:    str(body, "reportDate"),
			Type:          t,
			Data:          body,
			DeptCode:      str(body, "deptCode"),
			DeptName:      str(body, "deptName"),
			DiagnosisCode: str(body, "diagnosisCode"),
			DiagnosisName: str(body, "diagnosisName"),
		}

		res := r.reportsSvc.Process(req.Context(), sub)
		if res.Code == "200" {
			middleware.IncrementReports()
			if res.Degraded {
				middleware.IncrementReportsDegraded()
			}
		} else {
			middleware.IncrementReportsFailed()
		}
		writeResult(w, res)
		return nil
	}
}

// writeResult renders the pipeline result into the uniform envelope: the
// narrative on success, the error message in its place on failure.
func writeResult(w http.ResponseWriter, res appreports.Result) {
	body := map[string]any{
		"code":         res.Code,
		"cardNo":       res.CardNo,
		"processed_at": res.ProcessedAt.Format(time.RFC3339),
	}
	if res.Code == "200" {
		body["ai_analysis"] = res.Narrative
	} else {
		body["error"] = res.Err
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, body)
}

// POST /compare-reports
func (r *Router) handleCompare(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		CardNo           string      `json:"cardNo"`
		ReportType       string      `json:"reportType"`
		CurrentReportID  json.Number `json:"currentReportId"`
		ComparisonPeriod string      `json:"comparisonPeriod"`
	}
	dec := json.NewDecoder(req.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}

	cardNo := middleware.SanitizeString(body.CardNo)
	if err := middleware.ValidateCardNo(cardNo); err != nil {
		return err
	}
	if err := middleware.ValidateReportType(body.ReportType); err != nil {
		return err
	}
	reportID, err := body.CurrentReportID.Int64()
	if err != nil || reportID <= 0 {
		return middleware.ValidationErrorf("currentReportId must be a positive integer")
	}
	if body.ComparisonPeriod != "" && !middleware.ValidateComparisonPeriod(body.ComparisonPeriod) {
		log.Printf("request_id=%s unrecognized comparison period %q, using default",
			middleware.RequestID(req.Context()), body.ComparisonPeriod)
	}

	out := r.comparisonSvc.Compare(req.Context(), appcomparison.CompareCommand{
		CardNo:   cardNo,
		Type:     domain.ReportType(body.ReportType),
		ReportID: domain.ReportID(reportID),
		Period:   domain.ParseWindow(body.ComparisonPeriod),
	})
	middleware.IncrementComparisons()

	resp := map[string]any{
		"code":                     out.Code,
		"cardNo":                   out.CardNo,
		"current_report_id":        out.ReportID,
		"comparison_period":        string(out.Period),
		"historical_reports_count": out.HistoricalCount,
		"processed_at":             out.ProcessedAt.Format(time.RFC3339),
	}
	if out.Code == "200" {
		resp["comparison_analysis"] = out.Narrative
		resp["key_changes"] = out.KeyChanges
		resp["trend_analysis"] = out.TrendAnalysis
		resp["risk_assessment"] = out.RiskAssessment
		resp["recommendations"] = out.Recommendations
		resp["analysis_model"] = out.Model
		resp["analysis_confidence"] = out.Confidence
	} else {
		resp["error"] = out.Err
	}
	status := out.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
	return nil
}

// POST /patient-history
func (r *Router) handlePatientHistory(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		CardNo string `json:"cardNo"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}

	cardNo := middleware.SanitizeString(body.CardNo)
	if err := middleware.ValidateCardNo(cardNo); err != nil {
		return err
	}
	limit := middleware.ValidateLimit(body.Limit)
	offset := middleware.ValidateOffset(body.Offset)

	page, err := r.reportsSvc.History(req.Context(), cardNo, limit, offset)
	if err != nil {
		return fmt.Errorf("loading patient history: %w", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"code":          "200",
		"cardNo":        page.CardNo,
		"total_reports": page.Total,
		"limit":         page.Limit,
		"offset":        page.Offset,
		"reports":       page.Reports,
	})
	return nil
}
