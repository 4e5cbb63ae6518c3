package api

import "github.com/maturitylab/compass/internal/services"

type catalogStoreAdapter struct{ store Store }

func newCatalogStoreAdapter(store Store) services.CatalogStore {
	return &catalogStoreAdapter{store: store}
}

func (a *catalogStoreAdapter) ListActiveQuestions() ([]*services.Question, error) {
	qs, err := a.store.ListActiveQuestions()
	if err != nil {
		return nil, err
	}
	out := make([]*services.Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, convertAPIQuestion(q))
	}
	return out, nil
}

func (a *catalogStoreAdapter) GetQuestionsByIDs(ids []string) (map[string]*services.Question, error) {
	qs, err := a.store.GetQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*services.Question, len(qs))
	for id, q := range qs {
		out[id] = convertAPIQuestion(q)
	}
	return out, nil
}

// SeedDefaultCatalog loads the built-in question set into an empty store.
func SeedDefaultCatalog(store Store) error {
	defaults := services.DefaultCatalog()
	qs := make([]*Question, 0, len(defaults))
	for _, q := range defaults {
		qs = append(qs, convertServiceQuestion(q))
	}
	return store.SeedQuestions(qs)
}
