package api

import "github.com/maturitylab/compass/internal/services"

func convertAPISurvey(sv *Survey) *services.Survey {
	if sv == nil {
		return nil
	}
	return &services.Survey{
		ID:             sv.ID,
		OrgID:          sv.OrgID,
		UserID:         sv.UserID,
		Type:           services.SurveyType(sv.Type),
		Month:          sv.Month,
		LegacyAnswers:  sv.LegacyAnswers,
		Answers:        sv.Answers,
		CatalogVersion: sv.CatalogVersion,
		Scores:         toCategoryScores(sv.Scores),
		Total:          sv.Total,
		CreatedAt:      sv.CreatedAt,
	}
}

func convertServiceSurvey(sv *services.Survey) *Survey {
	if sv == nil {
		return nil
	}
	return &Survey{
		ID:             sv.ID,
		OrgID:          sv.OrgID,
		UserID:         sv.UserID,
		Type:           string(sv.Type),
		Month:          sv.Month,
		LegacyAnswers:  sv.LegacyAnswers,
		Answers:        sv.Answers,
		CatalogVersion: sv.CatalogVersion,
		Scores:         fromCategoryScores(sv.Scores),
		Total:          sv.Total,
		CreatedAt:      sv.CreatedAt,
	}
}

func convertAPIQuestion(q *Question) *services.Question {
	if q == nil {
		return nil
	}
	return &services.Question{
		ID:       q.ID,
		Category: services.Category(q.Category),
		Order:    q.Order,
		Weight:   q.Weight,
		Active:   q.Active,
		Version:  q.Version,
		Title:    q.Title,
		Help:     q.Help,
	}
}

func convertServiceQuestion(q *services.Question) *Question {
	if q == nil {
		return nil
	}
	return &Question{
		ID:       q.ID,
		Category: string(q.Category),
		Order:    q.Order,
		Weight:   q.Weight,
		Active:   q.Active,
		Version:  q.Version,
		Title:    q.Title,
		Help:     q.Help,
	}
}

func convertAPIBenchmark(b *Benchmark) *services.Benchmark {
	if b == nil {
		return nil
	}
	return &services.Benchmark{
		ID:        b.ID,
		Year:      b.Year,
		Source:    b.Source,
		Scores:    toCategoryScores(b.Scores),
		UpdatedAt: b.UpdatedAt,
	}
}

func convertServiceBenchmark(b *services.Benchmark) *Benchmark {
	if b == nil {
		return nil
	}
	return &Benchmark{
		ID:        b.ID,
		Year:      b.Year,
		Source:    b.Source,
		Scores:    fromCategoryScores(b.Scores),
		UpdatedAt: b.UpdatedAt,
	}
}

func convertAPISubscription(sub *Subscription) *services.Subscription {
	if sub == nil {
		return nil
	}
	return &services.Subscription{
		OrgID:        sub.OrgID,
		Plan:         services.Plan(sub.Plan),
		Status:       services.SubscriptionStatus(sub.Status),
		ExpiresAt:    sub.ExpiresAt,
		NeverExpires: sub.NeverExpires,
		UpdatedAt:    sub.UpdatedAt,
	}
}

func convertServiceSubscription(sub *services.Subscription) *Subscription {
	if sub == nil {
		return nil
	}
	return &Subscription{
		OrgID:        sub.OrgID,
		Plan:         string(sub.Plan),
		Status:       string(sub.Status),
		ExpiresAt:    sub.ExpiresAt,
		NeverExpires: sub.NeverExpires,
		UpdatedAt:    sub.UpdatedAt,
	}
}

func convertAPIUser(u *User) *services.User {
	if u == nil {
		return nil
	}
	return &services.User{
		ID:        u.ID,
		Email:     u.Email,
		PassHash:  u.PassHash,
		OrgID:     u.OrgID,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toCategoryScores(m map[string]float64) services.CategoryScores {
	if m == nil {
		return nil
	}
	out := make(services.CategoryScores, len(m))
	for k, v := range m {
		out[services.Category(k)] = v
	}
	return out
}

func fromCategoryScores(m services.CategoryScores) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func convertAPIAudit(e services.AuditEntry) AuditEntry {
	return AuditEntry{Time: e.Time, Actor: e.Actor, Action: e.Action, Target: e.Target, Note: e.Note}
}
