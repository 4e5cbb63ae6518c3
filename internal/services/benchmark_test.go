package services

import (
	"testing"
	"time"
)

func fullBenchmark(v float64) *Benchmark {
	scores := CategoryScores{}
	for _, cat := range CategoryOrder {
		scores[cat] = v
	}
	return &Benchmark{ID: "bm1", Year: 2025, Source: "industry-panel", Scores: scores, UpdatedAt: time.Unix(0, 0)}
}

func TestCompareToBenchmarkMissingSnapshot(t *testing.T) {
	if cmp := CompareToBenchmark(CategoryScores{CategorySecurity: 3}, nil); cmp != nil {
		t.Fatalf("expected nil comparison without a benchmark, got %+v", cmp)
	}
}

func TestCompareToBenchmarkSignedDeltas(t *testing.T) {
	bm := fullBenchmark(3.0)
	cmp := CompareToBenchmark(CategoryScores{
		CategoryCollaboration: 4.2,
		CategorySecurity:      1.8,
	}, bm)
	if cmp == nil {
		t.Fatalf("expected comparison")
	}
	if got := cmp.Deltas[CategoryCollaboration]; got != 1.2 {
		t.Fatalf("collaboration delta = %v, want 1.2", got)
	}
	if got := cmp.Deltas[CategorySecurity]; got != -1.2 {
		t.Fatalf("security delta = %v, want -1.2", got)
	}
	if len(cmp.Deltas) != 2 {
		t.Fatalf("deltas must cover only categories present on both sides: %+v", cmp.Deltas)
	}
}

func TestCompareToBenchmarkTotalIsMeansOfMeans(t *testing.T) {
	bm := fullBenchmark(5.0)
	bm.Scores[CategoryCollaboration] = 1.0
	// Self has one category. mean(self)=5.0, mean(benchmark)=(1+5+5+5+5)/5=4.2,
	// so the aggregate is 0.8 even though the only per-category delta is 4.0.
	cmp := CompareToBenchmark(CategoryScores{CategoryCollaboration: 5.0}, bm)
	if cmp == nil {
		t.Fatalf("expected comparison")
	}
	if got := cmp.Deltas[CategoryCollaboration]; got != 4.0 {
		t.Fatalf("collaboration delta = %v, want 4.0", got)
	}
	if cmp.Total != 0.8 {
		t.Fatalf("total delta = %v, want 0.8 (means of means, not mean of deltas)", cmp.Total)
	}
}

type stubBenchmarkAdminStore struct {
	latest *Benchmark
	audit  []AuditEntry
}

func (s *stubBenchmarkAdminStore) LatestBenchmark() (*Benchmark, error) { return s.latest, nil }
func (s *stubBenchmarkAdminStore) UpsertBenchmark(b *Benchmark) error {
	s.latest = b
	return nil
}
func (s *stubBenchmarkAdminStore) AddAudit(entry AuditEntry) { s.audit = append(s.audit, entry) }

func TestBenchmarkUpsertRequiresAdmin(t *testing.T) {
	store := &stubBenchmarkAdminStore{}
	svc := NewBenchmarkService(store)

	if _, err := svc.Upsert(Identity{}, fullBenchmark(3)); err == nil {
		t.Fatalf("expected unauthorized error")
	}
	if _, err := svc.Upsert(Identity{UserID: "u1", OrgID: "org1", Role: "owner"}, fullBenchmark(3)); err == nil {
		t.Fatalf("expected forbidden error for non-admin")
	}

	bm := fullBenchmark(3)
	res, err := svc.Upsert(Identity{UserID: "u1", OrgID: "org1", Role: "admin"}, bm)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if res.UpdatedAt.IsZero() {
		t.Fatalf("expected updated-at to be stamped")
	}
	if store.latest == nil || len(store.audit) != 1 {
		t.Fatalf("expected snapshot stored with an audit entry")
	}
}

func TestBenchmarkUpsertValidation(t *testing.T) {
	svc := NewBenchmarkService(&stubBenchmarkAdminStore{})
	admin := Identity{UserID: "u1", Role: "admin"}

	if _, err := svc.Upsert(admin, &Benchmark{Year: 2025, Source: "x", Scores: CategoryScores{"mystery": 3}}); err == nil {
		t.Fatalf("expected error for unknown category")
	}
	if _, err := svc.Upsert(admin, &Benchmark{Year: 2025, Source: "x", Scores: CategoryScores{CategorySecurity: 9}}); err == nil {
		t.Fatalf("expected error for out-of-range score")
	}
	if _, err := svc.Upsert(admin, &Benchmark{Source: "x", Scores: CategoryScores{CategorySecurity: 3}}); err == nil {
		t.Fatalf("expected error for missing year")
	}
}
