package services

import (
	"errors"
	"time"
)

// ReportStore abstracts persistence for report synthesis. InsertReport must
// be backed by a uniqueness constraint on survey id and return ErrDuplicate
// so concurrent duplicate requests converge on one report.
type ReportStore interface {
	GetSurvey(id string) (*Survey, error)
	FindReportBySurvey(surveyID string) (*Report, error)
	CountReportsByOrg(orgID string) (int, error)
	InsertReport(r *Report) error
	AddAudit(entry AuditEntry)
}

// ReportResult wraps a report with a created-now flag, so callers can fire
// "report ready" notifications exactly once.
type ReportResult struct {
	Report  *Report
	Existed bool
}

// ReportService synthesizes the report artifact for a completed survey:
// top-3 actions from the lowest-scoring categories plus benchmark deltas.
// Generation is idempotent per survey.
type ReportService struct {
	store        ReportStore
	benchmarks   BenchmarkStore
	entitlements EntitlementResolver
	policy       ActionPolicy
	now          func() time.Time
	idGen        func() string
}

func NewReportService(store ReportStore, benchmarks BenchmarkStore, entitlements EntitlementResolver, policy ActionPolicy) *ReportService {
	if policy == nil {
		policy = NewDefaultActionPolicy()
	}
	return &ReportService{
		store:        store,
		benchmarks:   benchmarks,
		entitlements: entitlements,
		policy:       policy,
		now:          func() time.Time { return time.Now().UTC() },
		idGen:        func() string { return "rp" + shortID(10) },
	}
}

// GenerateReport returns the existing report for a survey, or synthesizes
// and persists a new one. Free-tier organizations are limited to one
// generated report lifetime; fetching an existing report never hits the cap.
func (s *ReportService) GenerateReport(id Identity, surveyID string) (*ReportResult, error) {
	if id.UserID == "" {
		return nil, NewUnauthorizedError("authentication required")
	}
	if id.OrgID == "" {
		return nil, NewForbiddenError("organization context required")
	}
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil || (sv.OrgID != id.OrgID && sv.UserID != id.UserID) {
		return nil, NewNotFoundError("survey not found")
	}

	existing, err := s.store.FindReportBySurvey(sv.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ReportResult{Report: existing, Existed: true}, nil
	}

	now := s.now()
	premium, err := s.entitlements.IsPremium(id.OrgID, now)
	if err != nil {
		return nil, err
	}
	if !premium {
		count, err := s.store.CountReportsByOrg(id.OrgID)
		if err != nil {
			return nil, err
		}
		if count >= 1 {
			return nil, NewPaymentRequiredError("additional reports require a premium plan")
		}
	}

	bm, err := s.benchmarks.LatestBenchmark()
	if err != nil {
		return nil, err
	}
	summary := ReportSummary{
		TopActions: s.policy.TopActions(sv.Scores, 3),
		Levels:     LevelsFor(sv.Scores),
	}
	if cmp := CompareToBenchmark(sv.Scores, bm); cmp != nil {
		summary.Deltas = cmp.Deltas
		total := cmp.Total
		summary.TotalDelta = &total
		summary.Benchmark = &BenchmarkInfo{Year: bm.Year, Source: bm.Source}
	}

	report := &Report{
		ID:        s.idGen(),
		SurveyID:  sv.ID,
		OrgID:     sv.OrgID,
		Summary:   summary,
		CreatedAt: now,
	}
	if err := s.store.InsertReport(report); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Concurrent generation won the race; serve its report.
			winner, ferr := s.store.FindReportBySurvey(sv.ID)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return &ReportResult{Report: winner, Existed: true}, nil
			}
		}
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: now, Actor: id.UserID, Action: "report.create", Target: report.ID, Note: sv.ID})
	return &ReportResult{Report: report, Existed: false}, nil
}
