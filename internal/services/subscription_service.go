package services

import "time"

// SubscriptionStore abstracts plan persistence per organization.
type SubscriptionStore interface {
	GetSubscription(orgID string) (*Subscription, error)
	UpsertSubscription(sub *Subscription) error
	AddAudit(entry AuditEntry)
}

// SubscriptionService resolves entitlement and manages plan grants.
// An organization without a subscription record is on the free plan.
type SubscriptionService struct {
	store SubscriptionStore
	now   func() time.Time
}

func NewSubscriptionService(store SubscriptionStore) *SubscriptionService {
	return &SubscriptionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ EntitlementResolver = (*SubscriptionService)(nil)

// IsPremium reports whether orgID holds a currently valid premium grant:
// premium plan, active or trialing status, and either a lifetime grant, no
// expiry on record, or an expiry after now.
func (s *SubscriptionService) IsPremium(orgID string, now time.Time) (bool, error) {
	sub, err := s.store.GetSubscription(orgID)
	if err != nil {
		return false, err
	}
	if sub == nil || sub.Plan != PlanPremium {
		return false, nil
	}
	switch sub.Status {
	case StatusActive, StatusTrialing:
	default:
		return false, nil
	}
	if sub.NeverExpires || sub.ExpiresAt == nil {
		return true, nil
	}
	return sub.ExpiresAt.After(now), nil
}

// Current returns the org's subscription, defaulting to a free grant when no
// record exists.
func (s *SubscriptionService) Current(id Identity) (*Subscription, error) {
	if id.UserID == "" {
		return nil, NewUnauthorizedError("authentication required")
	}
	if id.OrgID == "" {
		return nil, NewForbiddenError("organization context required")
	}
	sub, err := s.store.GetSubscription(id.OrgID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &Subscription{OrgID: id.OrgID, Plan: PlanFree, Status: StatusActive}, nil
	}
	return sub, nil
}

// SetPlan upserts an organization's plan grant. Admin only.
func (s *SubscriptionService) SetPlan(actor Identity, sub *Subscription) (*Subscription, error) {
	if actor.UserID == "" {
		return nil, NewUnauthorizedError("authentication required")
	}
	if actor.Role != "admin" {
		return nil, NewForbiddenError("admin role required")
	}
	if sub == nil || sub.OrgID == "" {
		return nil, NewInvalidError("organization id required")
	}
	switch sub.Plan {
	case PlanFree, PlanPremium:
	default:
		return nil, NewInvalidError("unknown plan " + string(sub.Plan))
	}
	switch sub.Status {
	case StatusActive, StatusTrialing, StatusPastDue, StatusCanceled:
	default:
		return nil, NewInvalidError("unknown status " + string(sub.Status))
	}
	sub.UpdatedAt = s.now()
	if err := s.store.UpsertSubscription(sub); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: sub.UpdatedAt, Actor: actor.UserID, Action: "subscription.set", Target: sub.OrgID, Note: string(sub.Plan) + "/" + string(sub.Status)})
	return sub, nil
}
