package services

import (
	"errors"
	"time"
)

// quarterlyInterval is the lock window after the most recent full survey.
const quarterlyInterval = 90 * 24 * time.Hour

// SurveyStore abstracts persistence for submissions and lifecycle reads.
// The existence checks below are advisory; InsertSurvey must be backed by
// store-level uniqueness (one baseline per org, one pulse per org+month) and
// return ErrDuplicate when a concurrent writer won the race.
type SurveyStore interface {
	FindBaseline(orgID string) (*Survey, error)
	// LatestFullSurvey returns the newest baseline or quarterly survey.
	LatestFullSurvey(orgID string) (*Survey, error)
	HasQuarterly(orgID string) (bool, error)
	FindPulse(orgID, month string) (*Survey, error)
	GetSurvey(id string) (*Survey, error)
	InsertSurvey(sv *Survey) error
	AddAudit(entry AuditEntry)
}

// EntitlementResolver answers plan-gate questions for an organization.
type EntitlementResolver interface {
	IsPremium(orgID string, now time.Time) (bool, error)
}

// SubmissionResult is the caller-facing outcome of a successful submission.
type SubmissionResult struct {
	SurveyID string         `json:"survey_id"`
	Scores   CategoryScores `json:"scores"`
	Total    float64        `json:"total"`
}

// SurveyService enforces the survey lifecycle and persists scored
// submissions. Check order is fixed: identity, organization context,
// entitlement, type-specific lifecycle rule, then payload validation.
type SurveyService struct {
	store        SurveyStore
	calc         *Calculator
	entitlements EntitlementResolver
	now          func() time.Time
	idGen        func() string
}

func NewSurveyService(store SurveyStore, calc *Calculator, entitlements EntitlementResolver) *SurveyService {
	return &SurveyService{
		store:        store,
		calc:         calc,
		entitlements: entitlements,
		now:          func() time.Time { return time.Now().UTC() },
		idGen:        func() string { return "sv" + shortID(10) },
	}
}

func (s *SurveyService) guard(id Identity) error {
	if id.UserID == "" {
		return NewUnauthorizedError("authentication required")
	}
	if id.OrgID == "" {
		return NewForbiddenError("organization context required")
	}
	return nil
}

// SubmitBaseline records an organization's first full survey. A second
// baseline is a conflict: the request is well formed, the state forbids it.
func (s *SurveyService) SubmitBaseline(id Identity, raw RawAnswers) (*SubmissionResult, error) {
	if err := s.guard(id); err != nil {
		return nil, err
	}
	existing, err := s.store.FindBaseline(id.OrgID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("baseline assessment already submitted")
	}
	return s.persist(id, SurveyBaseline, "", raw)
}

// SubmitQuarterly records a time-gated retake. Permitted once a baseline
// exists and either no quarterly was ever taken or the most recent full
// survey is at least 90 days old; otherwise locked, reporting when the
// retake unlocks.
func (s *SurveyService) SubmitQuarterly(id Identity, raw RawAnswers) (*SubmissionResult, error) {
	if err := s.guard(id); err != nil {
		return nil, err
	}
	baseline, err := s.store.FindBaseline(id.OrgID)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, NewForbiddenError("baseline assessment required before a quarterly retake")
	}
	taken, err := s.store.HasQuarterly(id.OrgID)
	if err != nil {
		return nil, err
	}
	if taken {
		latest, err := s.store.LatestFullSurvey(id.OrgID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			next := latest.CreatedAt.Add(quarterlyInterval)
			if s.now().Before(next) {
				return nil, NewLockedError("quarterly reassessment is locked", next)
			}
		}
	}
	return s.persist(id, SurveyQuarterly, "", raw)
}

// SubmitPulse records a premium-only monthly check-in, at most one per
// organization per calendar month. The plan gate runs before the month rule
// so free-tier callers see the upgrade requirement, not a confusing
// lock message.
func (s *SurveyService) SubmitPulse(id Identity, raw RawAnswers) (*SubmissionResult, error) {
	if err := s.guard(id); err != nil {
		return nil, err
	}
	now := s.now()
	premium, err := s.entitlements.IsPremium(id.OrgID, now)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, NewPaymentRequiredError("pulse checks require a premium plan")
	}
	month := now.Format("2006-01")
	existing, err := s.store.FindPulse(id.OrgID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("pulse check already submitted this month")
	}
	return s.persist(id, SurveyPulse, month, raw)
}

// persist runs payload validation last: parsing and scoring happen only after
// every identity, entitlement, and lifecycle gate has passed.
func (s *SurveyService) persist(id Identity, typ SurveyType, month string, raw RawAnswers) (*SubmissionResult, error) {
	ans, err := ParseAnswers(raw.Answers, raw.CatalogVersion)
	if err != nil {
		return nil, err
	}
	result, err := s.calc.Score(ans)
	if err != nil {
		return nil, err
	}
	sv := &Survey{
		ID:             s.idGen(),
		OrgID:          id.OrgID,
		UserID:         id.UserID,
		Type:           typ,
		Month:          month,
		LegacyAnswers:  ans.Legacy,
		Answers:        ans.ByID,
		CatalogVersion: ans.CatalogVersion,
		Scores:         result.Scores,
		Total:          result.Total,
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertSurvey(sv); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// A concurrent submission won the uniqueness race; same outcome
			// as the advisory check.
			return nil, NewConflictError(string(typ) + " survey already exists")
		}
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: sv.CreatedAt, Actor: id.UserID, Action: "survey.submit." + string(typ), Target: sv.ID})
	return &SubmissionResult{SurveyID: sv.ID, Scores: sv.Scores, Total: sv.Total}, nil
}

// GetSurvey returns a survey within the caller's scope. Out-of-scope and
// missing surveys are indistinguishable to avoid leaking existence.
func (s *SurveyService) GetSurvey(id Identity, surveyID string) (*Survey, error) {
	if err := s.guard(id); err != nil {
		return nil, err
	}
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil || (sv.OrgID != id.OrgID && sv.UserID != id.UserID) {
		return nil, NewNotFoundError("survey not found")
	}
	return sv, nil
}
