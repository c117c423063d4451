package ai

import (
	"context"
	"time"
)

// HistorySnapshot is the minimal view of a prior record that participates in
// prompt construction and cache keying. Full historical text never enters the
// cache key; the date is the practical discriminator.
type HistorySnapshot struct {
	ReportDate string
	Content    string
}

// AnalyzeRequest asks for a single-report narrative, comparative against the
// snapshot when one is present.
type AnalyzeRequest struct {
	Kind    string
	Input   map[string]any
	History *HistorySnapshot
}

// CompareRequest asks for an explicit multi-report comparison.
type CompareRequest struct {
	CardNo      string
	Kind        string
	Current     map[string]any
	CurrentDate string
	History     []map[string]any
	Period      string
}

// CompareResult is the structured outcome of a comparison call.
type CompareResult struct {
	Narrative       string
	KeyChanges      map[string][]string
	TrendAnalysis   string
	RiskAssessment  string
	Recommendations string
	Model           string
	Confidence      string
	TokensUsed      int
}

// Client is the text-generation backend. Analyze always returns usable
// narrative text: on backend failure it returns the degraded fallback string
// together with the error, so callers can skip caching without failing the
// pipeline.
type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
	Compare(ctx context.Context, req CompareRequest) (*CompareResult, error)
}

// CacheStats is reported by the health endpoint.
type CacheStats struct {
	Entries    int           `json:"entries"`
	MaxEntries int           `json:"max_entries"`
	TTL        time.Duration `json:"-"`
	Hits       uint64        `json:"hits"`
	Misses     uint64        `json:"misses"`
}

// AnalysisCache memoizes Analyze results keyed by (kind, input, history
// presence and date). Implementations must be safe for concurrent use.
type AnalysisCache interface {
	Get(kind string, input map[string]any, history *HistorySnapshot) (string, bool)
	Put(kind string, input map[string]any, history *HistorySnapshot, narrative string)
	Stats() CacheStats
}
