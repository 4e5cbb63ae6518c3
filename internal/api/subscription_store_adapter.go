package api

import "github.com/maturitylab/compass/internal/services"

type subscriptionStoreAdapter struct{ store Store }

func newSubscriptionStoreAdapter(store Store) services.SubscriptionStore {
	return &subscriptionStoreAdapter{store: store}
}

func (a *subscriptionStoreAdapter) GetSubscription(orgID string) (*services.Subscription, error) {
	sub, err := a.store.GetSubscription(orgID)
	if err != nil {
		return nil, err
	}
	return convertAPISubscription(sub), nil
}

func (a *subscriptionStoreAdapter) UpsertSubscription(sub *services.Subscription) error {
	return a.store.UpsertSubscription(convertServiceSubscription(sub))
}

func (a *subscriptionStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(convertAPIAudit(entry))
}
