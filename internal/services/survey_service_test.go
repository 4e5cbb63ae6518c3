package services

import (
	"sort"
	"testing"
	"time"
)

type stubSurveyStore struct {
	surveys   []*Survey
	insertErr error
	audit     []AuditEntry
}

func (s *stubSurveyStore) FindBaseline(orgID string) (*Survey, error) {
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && sv.Type == SurveyBaseline {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *stubSurveyStore) LatestFullSurvey(orgID string) (*Survey, error) {
	var full []*Survey
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && (sv.Type == SurveyBaseline || sv.Type == SurveyQuarterly) {
			full = append(full, sv)
		}
	}
	if len(full) == 0 {
		return nil, nil
	}
	sort.Slice(full, func(i, j int) bool { return full[i].CreatedAt.After(full[j].CreatedAt) })
	return full[0], nil
}

func (s *stubSurveyStore) HasQuarterly(orgID string) (bool, error) {
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && sv.Type == SurveyQuarterly {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubSurveyStore) FindPulse(orgID, month string) (*Survey, error) {
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && sv.Type == SurveyPulse && sv.Month == month {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *stubSurveyStore) GetSurvey(id string) (*Survey, error) {
	for _, sv := range s.surveys {
		if sv.ID == id {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *stubSurveyStore) InsertSurvey(sv *Survey) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.surveys = append(s.surveys, sv)
	return nil
}

func (s *stubSurveyStore) AddAudit(entry AuditEntry) { s.audit = append(s.audit, entry) }

type stubEntitlements struct{ premium bool }

func (s *stubEntitlements) IsPremium(orgID string, now time.Time) (bool, error) {
	return s.premium, nil
}

func newTestSurveyService(store *stubSurveyStore, premium bool, now time.Time) *SurveyService {
	svc := NewSurveyService(store, NewCalculator(newStubCatalog()), &stubEntitlements{premium: premium})
	svc.now = func() time.Time { return now }
	n := 0
	svc.idGen = func() string {
		n++
		return "sv" + string(rune('0'+n))
	}
	return svc
}

func legacyAnswers() RawAnswers {
	return RawAnswers{Answers: map[string]any{"q1": 3, "q4": 2, "q7": 1}}
}

var testIdentity = Identity{UserID: "u1", OrgID: "org1", Role: "owner"}

func TestSubmitBaselineOncePerOrg(t *testing.T) {
	store := &stubSurveyStore{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSurveyService(store, false, now)

	res, err := svc.SubmitBaseline(testIdentity, legacyAnswers())
	if err != nil {
		t.Fatalf("first baseline returned error: %v", err)
	}
	if res.SurveyID == "" || len(res.Scores) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.surveys[0].Type != SurveyBaseline || store.surveys[0].CreatedAt != now {
		t.Fatalf("stored survey not snapshotted correctly: %+v", store.surveys[0])
	}

	_, err = svc.SubmitBaseline(testIdentity, legacyAnswers())
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("second baseline: expected conflict, got %v", err)
	}
}

func TestSubmitBaselineGuards(t *testing.T) {
	svc := newTestSurveyService(&stubSurveyStore{}, false, time.Now().UTC())

	_, err := svc.SubmitBaseline(Identity{}, legacyAnswers())
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized without identity, got %v", err)
	}
	_, err = svc.SubmitBaseline(Identity{UserID: "u1"}, legacyAnswers())
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden without org context, got %v", err)
	}
}

func TestSubmitQuarterlyRequiresBaseline(t *testing.T) {
	svc := newTestSurveyService(&stubSurveyStore{}, false, time.Now().UTC())
	_, err := svc.SubmitQuarterly(testIdentity, legacyAnswers())
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden without baseline, got %v", err)
	}
}

func TestSubmitQuarterlyFirstRetakeUnlockedByBaseline(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &stubSurveyStore{surveys: []*Survey{
		{ID: "b1", OrgID: "org1", Type: SurveyBaseline, CreatedAt: now.Add(-24 * time.Hour)},
	}}
	svc := newTestSurveyService(store, false, now)

	// No quarterly was ever taken, so the 90-day window does not apply yet.
	if _, err := svc.SubmitQuarterly(testIdentity, legacyAnswers()); err != nil {
		t.Fatalf("first quarterly should be permitted: %v", err)
	}
}

func TestSubmitQuarterlyNinetyDayWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	lastTaken := now.Add(-89 * 24 * time.Hour)
	store := &stubSurveyStore{surveys: []*Survey{
		{ID: "b1", OrgID: "org1", Type: SurveyBaseline, CreatedAt: now.Add(-200 * 24 * time.Hour)},
		{ID: "r1", OrgID: "org1", Type: SurveyQuarterly, CreatedAt: lastTaken},
	}}
	svc := newTestSurveyService(store, false, now)

	_, err := svc.SubmitQuarterly(testIdentity, legacyAnswers())
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorLocked {
		t.Fatalf("89 days: expected locked, got %v", err)
	}
	if se.NextEligibleAt == nil || !se.NextEligibleAt.Equal(lastTaken.Add(90*24*time.Hour)) {
		t.Fatalf("locked outcome must report createdAt+90d, got %v", se.NextEligibleAt)
	}

	// Exactly 90 days is eligible.
	store.surveys[1].CreatedAt = now.Add(-90 * 24 * time.Hour)
	if _, err := svc.SubmitQuarterly(testIdentity, legacyAnswers()); err != nil {
		t.Fatalf("90 days: expected permitted, got %v", err)
	}
}

func TestSubmitPulsePremiumAndMonthlyRule(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	store := &stubSurveyStore{}

	free := newTestSurveyService(store, false, now)
	_, err := free.SubmitPulse(testIdentity, legacyAnswers())
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorPaymentRequired {
		t.Fatalf("expected payment required on free plan, got %v", err)
	}

	premium := newTestSurveyService(store, true, now)
	if _, err := premium.SubmitPulse(testIdentity, legacyAnswers()); err != nil {
		t.Fatalf("first pulse returned error: %v", err)
	}
	if store.surveys[0].Month != "2026-08" {
		t.Fatalf("pulse month = %q, want 2026-08", store.surveys[0].Month)
	}

	_, err = premium.SubmitPulse(testIdentity, legacyAnswers())
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("same-month pulse: expected conflict, got %v", err)
	}

	premium.now = func() time.Time { return now.AddDate(0, 1, 0) }
	if _, err := premium.SubmitPulse(testIdentity, legacyAnswers()); err != nil {
		t.Fatalf("next-month pulse returned error: %v", err)
	}
}

func TestInsertRaceMapsToConflict(t *testing.T) {
	store := &stubSurveyStore{insertErr: ErrDuplicate}
	svc := newTestSurveyService(store, false, time.Now().UTC())
	_, err := svc.SubmitBaseline(testIdentity, legacyAnswers())
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("unique-violation insert must surface as conflict, got %v", err)
	}
}

func TestLifecycleChecksPrecedePayloadValidation(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &stubSurveyStore{surveys: []*Survey{
		{ID: "b1", OrgID: "org1", Type: SurveyBaseline, CreatedAt: now.Add(-time.Hour)},
	}}
	svc := newTestSurveyService(store, false, now)

	// Even with a bad payload, the state conflict must win.
	bad := RawAnswers{Answers: map[string]any{"q1": 99}}
	_, err := svc.SubmitBaseline(testIdentity, bad)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict before payload validation, got %v", err)
	}
}

func TestPayloadValidationRunsAfterGates(t *testing.T) {
	svc := newTestSurveyService(&stubSurveyStore{}, false, time.Now().UTC())

	bad := RawAnswers{Answers: map[string]any{"q1": 99}}
	_, err := svc.SubmitBaseline(testIdentity, bad)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid once all gates pass, got %v", err)
	}

	// An unauthenticated bad payload still reads as unauthorized.
	_, err = svc.SubmitBaseline(Identity{}, bad)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized to outrank payload validation, got %v", err)
	}
}

func TestGetSurveyScope(t *testing.T) {
	store := &stubSurveyStore{surveys: []*Survey{
		{ID: "sv1", OrgID: "org1", UserID: "u1"},
		{ID: "sv2", OrgID: "org2", UserID: "u2"},
	}}
	svc := newTestSurveyService(store, false, time.Now().UTC())

	if _, err := svc.GetSurvey(testIdentity, "sv1"); err != nil {
		t.Fatalf("in-scope survey returned error: %v", err)
	}
	_, err := svc.GetSurvey(testIdentity, "sv2")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("out-of-scope survey must be not found, got %v", err)
	}
	if _, err := svc.GetSurvey(testIdentity, "missing"); err == nil {
		t.Fatalf("missing survey must be not found")
	}
}
