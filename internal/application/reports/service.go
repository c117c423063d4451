package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/medreport-ai/internal/application"
	aidom "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
	"github.com/bryanwahyu/medreport-ai/internal/domain/patients"
	domain "github.com/bryanwahyu/medreport-ai/internal/domain/reports"
)

// Service implements use-cases untuk medical reports.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Reports  domain.Repository
	Patients patients.Repository
	AI       aidom.Client
	Cache    aidom.AnalysisCache
	Archive  domain.ArchiveStore // optional; nil disables payload archiving
	Clock    application.Clock
}

//
// ==== USE CASES ====
//

// Result is the per-submission pipeline outcome rendered into the response
// envelope. Code follows the upstream convention: "200" success, "500"
// failure, carried as a string inside the body.
type Result struct {
	Code        string
	Status      int // HTTP status for the boundary
	CardNo      string
	ProcessedAt time.Time
	Narrative   string
	Degraded    bool
	Err         string
}

func failure(cardNo string, at time.Time, status int, msg string) Result {
	return Result{Code: "500", Status: status, CardNo: cardNo, ProcessedAt: at, Err: msg}
}

// Process runs one submission through the full pipeline: normalize, history
// lookup, cache check, generate, persist. A generator failure degrades the
// narrative but still persists the report; only a validation or storage
// failure yields a failure result, and nothing is written in those cases.
func (s *Service) Process(ctx context.Context, sub domain.Submission) Result {
	now := s.Clock.Now()

	norm, err := domain.Normalize(sub, now)
	if err != nil {
		return failure(sub.CardNo, now, http.StatusBadRequest, err.Error())
	}

	s.archivePayload(sub)

	history := s.latestHistory(ctx, sub.CardNo, sub.Type)

	narrative, cached := s.Cache.Get(norm.Kind, norm.AnalysisInput, history)
	degraded := false
	if !cached {
		// Generation runs on its own context so a dropped request does not
		// abort a completed call whose result could still warm the cache.
		text, genErr := s.AI.Analyze(context.Background(), aidom.AnalyzeRequest{
			Kind:    norm.Kind,
			Input:   norm.AnalysisInput,
			History: history,
		})
		narrative = text
		if genErr != nil {
			// degraded narrative: persisted below but never cached
			degraded = true
			log.Printf("analysis degraded for card %s: %v", sub.CardNo, genErr)
		} else {
			s.Cache.Put(norm.Kind, norm.AnalysisInput, history, narrative)
		}
	}

	rep := &domain.Report{
		CardNo:        sub.CardNo,
		PatientNo:     sub.PatientNo,
		Type:          sub.Type,
		ReportDate:    norm.ReportDate,
		Data:          norm.StorageData,
		DeptCode:      sub.DeptCode,
		DeptName:      sub.DeptName,
		DiagnosisCode: sub.DiagnosisCode,
		DiagnosisName: sub.DiagnosisName,
		Narrative:     narrative,
		ProcessedAt:   now,
	}
	if err := s.Reports.Save(ctx, rep); err != nil {
		log.Printf("storing %s report for card %s: %v", sub.Type, sub.CardNo, err)
		return failure(sub.CardNo, now, http.StatusInternalServerError, "failed to store report")
	}

	return Result{
		Code:        "200",
		Status:      http.StatusOK,
		CardNo:      sub.CardNo,
		ProcessedAt: now,
		Narrative:   narrative,
		Degraded:    degraded,
	}
}

// HistoryPage is one page of a patient's report summaries.
type HistoryPage struct {
	CardNo  string           `json:"card_no"`
	Total   int64            `json:"total_reports"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	Reports []domain.Summary `json:"reports"`
}

// History pages through every report for the patient, newest first.
func (s *Service) History(ctx context.Context, cardNo string, limit, offset int) (*HistoryPage, error) {
	summaries, total, err := s.Reports.Summaries(ctx, cardNo, limit, offset)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return &HistoryPage{
		CardNo:  cardNo,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Reports: summaries,
	}, nil
}

// latestHistory fetches the newest ancillary snapshot for the category's
// slot. Lookup failures downgrade to "no history" so a flaky patient store
// never blocks intake.
func (s *Service) latestHistory(ctx context.Context, cardNo string, t domain.ReportType) *aidom.HistorySnapshot {
	if s.Patients == nil {
		return nil
	}
	snap, err := s.Patients.LatestSnapshot(ctx, cardNo, patients.SlotFor(t))
	if err != nil {
		log.Printf("patient history lookup for card %s: %v", cardNo, err)
		return nil
	}
	if snap == nil || snap.Content == "" {
		return nil
	}
	return &aidom.HistorySnapshot{ReportDate: snap.RegDate, Content: snap.Content}
}

// archivePayload stores the raw submission best-effort. Runs detached so
// object-store latency never sits on the response path.
func (s *Service) archivePayload(sub domain.Submission) {
	if s.Archive == nil {
		return
	}
	raw, err := json.Marshal(sub.Data)
	if err != nil {
		return
	}
	key := fmt.Sprintf("submissions/%s/%s/%s.json", sub.Type, sub.CardNo, uuid.New().String())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.Archive.Archive(ctx, key, raw); err != nil {
			log.Printf("archiving submission %s: %v", key, err)
		}
	}()
}
