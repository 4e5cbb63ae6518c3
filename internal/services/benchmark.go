package services

import "time"

// BenchmarkStore abstracts benchmark snapshot lookups.
type BenchmarkStore interface {
	// LatestBenchmark returns the most recent snapshot (year descending,
	// tie-broken by update time) or nil when none exists.
	LatestBenchmark() (*Benchmark, error)
}

// BenchmarkComparison holds signed per-category deltas (self minus benchmark;
// positive means outperforming) plus an aggregate delta.
type BenchmarkComparison struct {
	Deltas CategoryScores `json:"deltas"`
	Total  float64        `json:"total"`
}

// CompareToBenchmark computes deltas between an org's scores and a benchmark
// snapshot. Returns nil when bm is nil so report generation degrades
// gracefully instead of erroring on missing benchmark data.
//
// The aggregate delta is mean(self categories) minus mean(benchmark
// categories), not the mean of the per-category deltas. The two diverge when
// the org's score set has absent categories; the means-of-means form is the
// specified behavior.
func CompareToBenchmark(scores CategoryScores, bm *Benchmark) *BenchmarkComparison {
	if bm == nil {
		return nil
	}
	deltas := CategoryScores{}
	for _, cat := range CategoryOrder {
		self, okSelf := scores[cat]
		ref, okRef := bm.Scores[cat]
		if !okSelf || !okRef {
			continue
		}
		deltas[cat] = round1(self - ref)
	}
	return &BenchmarkComparison{
		Deltas: deltas,
		Total:  round1(mean(scores) - mean(bm.Scores)),
	}
}

func mean(scores CategoryScores) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// BenchmarkAdminStore extends lookups with snapshot management.
type BenchmarkAdminStore interface {
	BenchmarkStore
	UpsertBenchmark(b *Benchmark) error
	AddAudit(entry AuditEntry)
}

// BenchmarkService manages benchmark snapshots (admin surface).
type BenchmarkService struct {
	store BenchmarkAdminStore
	now   func() time.Time
	idGen func() string
}

func NewBenchmarkService(store BenchmarkAdminStore) *BenchmarkService {
	return &BenchmarkService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return "bm" + shortID(10) },
	}
}

func (s *BenchmarkService) Latest() (*Benchmark, error) {
	return s.store.LatestBenchmark()
}

// Upsert stores a year/source snapshot. Admin only.
func (s *BenchmarkService) Upsert(actor Identity, bm *Benchmark) (*Benchmark, error) {
	if actor.UserID == "" {
		return nil, NewUnauthorizedError("authentication required")
	}
	if actor.Role != "admin" {
		return nil, NewForbiddenError("admin role required")
	}
	if bm == nil || bm.Year == 0 || bm.Source == "" {
		return nil, NewInvalidError("benchmark year and source required")
	}
	if len(bm.Scores) == 0 {
		return nil, NewInvalidError("benchmark scores required")
	}
	for cat, v := range bm.Scores {
		if !ValidCategory(cat) {
			return nil, NewInvalidError("unknown benchmark category " + string(cat))
		}
		if v < 0 || v > 5 {
			return nil, NewInvalidError("benchmark score out of range for " + string(cat))
		}
	}
	if bm.ID == "" {
		bm.ID = s.idGen()
	}
	bm.UpdatedAt = s.now()
	if err := s.store.UpsertBenchmark(bm); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor.UserID, Action: "benchmark.upsert", Target: bm.ID, Note: bm.Source})
	return bm, nil
}
