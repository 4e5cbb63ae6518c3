package api

import (
	"encoding/json"
	"errors"

	"github.com/maturitylab/compass/internal/services"
)

type reportStoreAdapter struct{ store Store }

func newReportStoreAdapter(store Store) services.ReportStore {
	return &reportStoreAdapter{store: store}
}

func (a *reportStoreAdapter) GetSurvey(id string) (*services.Survey, error) {
	sv, err := a.store.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	return convertAPISurvey(sv), nil
}

func (a *reportStoreAdapter) FindReportBySurvey(surveyID string) (*services.Report, error) {
	r, err := a.store.FindReportBySurvey(surveyID)
	if err != nil {
		return nil, err
	}
	return convertAPIReport(r)
}

func (a *reportStoreAdapter) CountReportsByOrg(orgID string) (int, error) {
	return a.store.CountReportsByOrg(orgID)
}

func (a *reportStoreAdapter) InsertReport(r *services.Report) error {
	stored, err := convertServiceReport(r)
	if err != nil {
		return err
	}
	if err := a.store.InsertReport(stored); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return services.ErrDuplicate
		}
		return err
	}
	return nil
}

func (a *reportStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(convertAPIAudit(entry))
}

func convertAPIReport(r *Report) (*services.Report, error) {
	if r == nil {
		return nil, nil
	}
	out := &services.Report{
		ID:        r.ID,
		SurveyID:  r.SurveyID,
		OrgID:     r.OrgID,
		CreatedAt: r.CreatedAt,
	}
	if len(r.Summary) > 0 {
		if err := json.Unmarshal(r.Summary, &out.Summary); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func convertServiceReport(r *services.Report) (*Report, error) {
	if r == nil {
		return nil, nil
	}
	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:        r.ID,
		SurveyID:  r.SurveyID,
		OrgID:     r.OrgID,
		Summary:   summary,
		CreatedAt: r.CreatedAt,
	}, nil
}
