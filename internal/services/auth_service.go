package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	AddUser(u *User) error
	AddOrganization(o *Organization) error
}

type TokenSigner func(uid, oid, email, role string, ttl time.Duration) (string, error)

// AuthService is the concrete identity resolver: registration creates an
// organization plus its owner user; login issues a session token carrying
// {userId, orgId}.
type AuthService struct {
	store       AuthStore
	now         func() time.Time
	idGen       func(prefix string, n int) string
	signToken   TokenSigner
	tokenTTL    time.Duration
	adminEmails map[string]bool
}

type AuthResult struct {
	Token  string
	OrgID  string
	UserID string
}

func NewAuthService(store AuthStore, signer TokenSigner, adminEmails []string) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = true
		}
	}
	return &AuthService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGen:       func(prefix string, n int) string { return prefix + shortID(n) },
		signToken:   signer,
		tokenTTL:    30 * 24 * time.Hour,
		adminEmails: admins,
	}
}

func (s *AuthService) Register(email, password, orgName string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	orgID := s.idGen("org", 7)
	if err := s.store.AddOrganization(&Organization{ID: orgID, Name: orgName, CreatedAt: s.now()}); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := "owner"
	if s.adminEmails[strings.ToLower(email)] {
		role = "admin"
	}
	userID := s.idGen("u", 7)
	if err := s.store.AddUser(&User{ID: userID, Email: email, PassHash: hash, OrgID: orgID, Role: role, CreatedAt: s.now()}); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// A concurrent registration claimed the email between the
			// advisory read and the insert.
			return nil, NewConflictError("email exists")
		}
		return nil, err
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(userID, orgID, email, role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, OrgID: orgID, UserID: userID}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.OrgID, u.Email, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, OrgID: u.OrgID, UserID: u.ID}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
