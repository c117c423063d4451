package reports

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aidom "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
	"github.com/bryanwahyu/medreport-ai/internal/domain/patients"
	domain "github.com/bryanwahyu/medreport-ai/internal/domain/reports"
	"github.com/bryanwahyu/medreport-ai/internal/infra/cache"
)

const degradedText = "AI analysis is temporarily unavailable."

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type fakeReportRepo struct {
	saved   []*domain.Report
	saveErr error

	summaries []domain.Summary
	total     int64

	lastLimit  int
	lastOffset int
}

func (f *fakeReportRepo) Save(ctx context.Context, r *domain.Report) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	r.ID = domain.ReportID(len(f.saved) + 1)
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeReportRepo) Get(ctx context.Context, t domain.ReportType, id domain.ReportID) (*domain.Report, error) {
	for _, r := range f.saved {
		if r.ID == id && r.Type == t {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeReportRepo) HistoryByType(ctx context.Context, cardNo string, t domain.ReportType, cutoff time.Time, excludeID domain.ReportID) ([]*domain.Report, error) {
	return nil, nil
}

func (f *fakeReportRepo) Summaries(ctx context.Context, cardNo string, limit, offset int) ([]domain.Summary, int64, error) {
	f.lastLimit, f.lastOffset = limit, offset
	end := offset + limit
	if end > len(f.summaries) {
		end = len(f.summaries)
	}
	if offset >= len(f.summaries) {
		return nil, f.total, nil
	}
	return f.summaries[offset:end], f.total, nil
}

type fakePatientRepo struct {
	snapshot *patients.Snapshot
	err      error
	lastSlot patients.Slot
}

func (f *fakePatientRepo) LatestSnapshot(ctx context.Context, cardNo string, slot patients.Slot) (*patients.Snapshot, error) {
	f.lastSlot = slot
	return f.snapshot, f.err
}

type fakeAI struct {
	calls     int
	failWith  error
	lastReq   aidom.AnalyzeRequest
	narrative string
}

func (f *fakeAI) Analyze(ctx context.Context, req aidom.AnalyzeRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.failWith != nil {
		return degradedText, f.failWith
	}
	return f.narrative, nil
}

func (f *fakeAI) Compare(ctx context.Context, req aidom.CompareRequest) (*aidom.CompareResult, error) {
	return nil, errors.New("not implemented")
}

func newService(repo *fakeReportRepo, pat *fakePatientRepo, ai *fakeAI) *Service {
	return &Service{
		Reports:  repo,
		Patients: pat,
		AI:       ai,
		Cache:    cache.NewMemory(10, time.Hour),
		Clock:    fixedClock{at: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)},
	}
}

func labSubmission() domain.Submission {
	return domain.Submission{
		CardNo:     "CARD001",
		ReportDate: "20250110090000",
		Type:       domain.TypeRoutineLab,
		Data: map[string]any{
			"resultList": []any{map[string]any{"name": "WBC", "value": "6.2"}},
		},
	}
}

func TestProcessFirstReportNoHistory(t *testing.T) {
	repo := &fakeReportRepo{}
	pat := &fakePatientRepo{}
	ai := &fakeAI{narrative: "all indicators within normal range"}
	svc := newService(repo, pat, ai)

	res := svc.Process(context.Background(), labSubmission())

	assert.Equal(t, "200", res.Code)
	assert.Equal(t, "CARD001", res.CardNo)
	assert.Equal(t, "all indicators within normal range", res.Narrative)
	assert.False(t, res.Degraded)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "all indicators within normal range", repo.saved[0].Narrative)
	assert.Contains(t, repo.saved[0].Data, "result_list")

	assert.Nil(t, ai.lastReq.History, "no snapshot means no history in the request")
	assert.Equal(t, patients.SlotLabDetail, pat.lastSlot)
}

func TestProcessWithHistorySnapshot(t *testing.T) {
	repo := &fakeReportRepo{}
	pat := &fakePatientRepo{snapshot: &patients.Snapshot{
		CardNo:  "CARD001",
		RegDate: "20241201",
		Content: "prior lab results: WBC 5.8",
	}}
	ai := &fakeAI{narrative: "WBC trending slightly upward"}
	svc := newService(repo, pat, ai)

	res := svc.Process(context.Background(), labSubmission())

	assert.Equal(t, "200", res.Code)
	require.NotNil(t, ai.lastReq.History)
	assert.Equal(t, "20241201", ai.lastReq.History.ReportDate)
	assert.Equal(t, "prior lab results: WBC 5.8", ai.lastReq.History.Content)
}

func TestProcessHistoryLookupFailureDowngrades(t *testing.T) {
	repo := &fakeReportRepo{}
	pat := &fakePatientRepo{err: errors.New("connection refused")}
	ai := &fakeAI{narrative: "narrative"}
	svc := newService(repo, pat, ai)

	res := svc.Process(context.Background(), labSubmission())

	assert.Equal(t, "200", res.Code)
	assert.Nil(t, ai.lastReq.History)
	assert.Len(t, repo.saved, 1)
}

func TestProcessCachesNarrative(t *testing.T) {
	repo := &fakeReportRepo{}
	ai := &fakeAI{narrative: "cached narrative"}
	svc := newService(repo, &fakePatientRepo{}, ai)

	first := svc.Process(context.Background(), labSubmission())
	second := svc.Process(context.Background(), labSubmission())

	assert.Equal(t, "200", first.Code)
	assert.Equal(t, first.Narrative, second.Narrative)
	assert.Equal(t, 1, ai.calls, "identical submissions should hit the cache")
	assert.Len(t, repo.saved, 2, "every submission is persisted, cached or not")
}

func TestProcessDegradedNotCached(t *testing.T) {
	repo := &fakeReportRepo{}
	ai := &fakeAI{failWith: aidom.ErrUnavailable}
	svc := newService(repo, &fakePatientRepo{}, ai)

	res := svc.Process(context.Background(), labSubmission())

	assert.Equal(t, "200", res.Code, "generator failure still accepts the report")
	assert.True(t, res.Degraded)
	assert.Equal(t, degradedText, res.Narrative)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, degradedText, repo.saved[0].Narrative)

	// backend recovers: the degraded result must not have been cached
	ai.failWith = nil
	ai.narrative = "real narrative"
	res = svc.Process(context.Background(), labSubmission())
	assert.Equal(t, "real narrative", res.Narrative)
	assert.Equal(t, 2, ai.calls)
}

func TestProcessValidationFailureWritesNothing(t *testing.T) {
	repo := &fakeReportRepo{}
	ai := &fakeAI{}
	svc := newService(repo, &fakePatientRepo{}, ai)

	sub := labSubmission()
	delete(sub.Data, "resultList")
	res := svc.Process(context.Background(), sub)

	assert.Equal(t, "500", res.Code)
	assert.Contains(t, res.Err, "resultList")
	assert.Empty(t, repo.saved, "rejected submissions must not be persisted")
	assert.Zero(t, ai.calls, "rejected submissions must not reach the generator")
}

func TestProcessStorageFailure(t *testing.T) {
	repo := &fakeReportRepo{saveErr: errors.New("disk full")}
	svc := newService(repo, &fakePatientRepo{}, &fakeAI{narrative: "text"})

	res := svc.Process(context.Background(), labSubmission())

	assert.Equal(t, "500", res.Code)
	assert.Equal(t, "failed to store report", res.Err)
}

func TestHistoryPagination(t *testing.T) {
	repo := &fakeReportRepo{total: 15}
	for i := 0; i < 15; i++ {
		repo.summaries = append(repo.summaries, domain.Summary{
			ReportID:   domain.ReportID(15 - i),
			ReportDate: fmt.Sprintf("202501%02d090000", 15-i),
			Type:       domain.TypeRoutineLab,
		})
	}
	svc := newService(repo, &fakePatientRepo{}, &fakeAI{})

	page, err := svc.History(context.Background(), "CARD001", 10, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(15), page.Total)
	assert.Len(t, page.Reports, 5)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 10, page.Offset)
}

func TestHistoryEmptyPageIsNotNil(t *testing.T) {
	repo := &fakeReportRepo{total: 0}
	svc := newService(repo, &fakePatientRepo{}, &fakeAI{})

	page, err := svc.History(context.Background(), "CARD404", 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Reports)
	assert.Empty(t, page.Reports)
}
