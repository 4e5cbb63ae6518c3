package api

import (
	"errors"

	"github.com/maturitylab/compass/internal/services"
)

type surveyStoreAdapter struct{ store Store }

func newSurveyStoreAdapter(store Store) services.SurveyStore {
	return &surveyStoreAdapter{store: store}
}

func (a *surveyStoreAdapter) FindBaseline(orgID string) (*services.Survey, error) {
	sv, err := a.store.FindBaseline(orgID)
	if err != nil {
		return nil, err
	}
	return convertAPISurvey(sv), nil
}

func (a *surveyStoreAdapter) LatestFullSurvey(orgID string) (*services.Survey, error) {
	sv, err := a.store.LatestFullSurvey(orgID)
	if err != nil {
		return nil, err
	}
	return convertAPISurvey(sv), nil
}

func (a *surveyStoreAdapter) HasQuarterly(orgID string) (bool, error) {
	return a.store.HasQuarterly(orgID)
}

func (a *surveyStoreAdapter) FindPulse(orgID, month string) (*services.Survey, error) {
	sv, err := a.store.FindPulse(orgID, month)
	if err != nil {
		return nil, err
	}
	return convertAPISurvey(sv), nil
}

func (a *surveyStoreAdapter) GetSurvey(id string) (*services.Survey, error) {
	sv, err := a.store.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	return convertAPISurvey(sv), nil
}

func (a *surveyStoreAdapter) InsertSurvey(sv *services.Survey) error {
	if err := a.store.InsertSurvey(convertServiceSurvey(sv)); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return services.ErrDuplicate
		}
		return err
	}
	return nil
}

func (a *surveyStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(convertAPIAudit(entry))
}
