package api

import (
	"errors"

	"github.com/maturitylab/compass/internal/services"
)

type authStoreAdapter struct{ store Store }

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	u, err := a.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	return convertAPIUser(u), nil
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	err := a.store.AddUser(&User{
		ID:        u.ID,
		Email:     u.Email,
		PassHash:  u.PassHash,
		OrgID:     u.OrgID,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	})
	if errors.Is(err, ErrDuplicate) {
		return services.ErrDuplicate
	}
	return err
}

func (a *authStoreAdapter) AddOrganization(o *services.Organization) error {
	return a.store.AddOrganization(&Organization{ID: o.ID, Name: o.Name, CreatedAt: o.CreatedAt})
}
