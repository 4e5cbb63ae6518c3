package api

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrDuplicate is the store-level uniqueness violation sentinel.
var ErrDuplicate = errors.New("duplicate record")

type Question struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Order    int     `json:"order"`
	Weight   float64 `json:"weight,omitempty"`
	Active   bool    `json:"active"`
	Version  int     `json:"version"`
	Title    string  `json:"title"`
	Help     string  `json:"help,omitempty"`
}

type Survey struct {
	ID             string             `json:"id"`
	OrgID          string             `json:"org_id"`
	UserID         string             `json:"user_id"`
	Type           string             `json:"type"`
	Month          string             `json:"month,omitempty"`
	LegacyAnswers  map[string]int     `json:"legacy_answers,omitempty"`
	Answers        map[string]int     `json:"answers,omitempty"`
	CatalogVersion int                `json:"catalog_version,omitempty"`
	Scores         map[string]float64 `json:"scores"`
	Total          float64            `json:"total"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Report stores the synthesized summary opaquely; the services layer owns its
// shape and the store only round-trips it.
type Report struct {
	ID        string          `json:"id"`
	SurveyID  string          `json:"survey_id"`
	OrgID     string          `json:"org_id"`
	Summary   json.RawMessage `json:"summary"`
	CreatedAt time.Time       `json:"created_at"`
}

type Benchmark struct {
	ID        string             `json:"id"`
	Year      int                `json:"year"`
	Source    string             `json:"source"`
	Scores    map[string]float64 `json:"scores"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type Subscription struct {
	OrgID        string     `json:"org_id"`
	Plan         string     `json:"plan"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	NeverExpires bool       `json:"never_expires,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	OrgID     string    `json:"org_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

type memoryStore struct {
	mu            sync.RWMutex
	questions     map[string]*Question
	surveys       map[string]*Survey
	reports       map[string]*Report // keyed by survey id
	benchmarks    []*Benchmark
	subscriptions map[string]*Subscription
	orgs          map[string]*Organization
	usersByEmail  map[string]*User
	audit         []AuditEntry
}

// NewMemoryStore returns an empty in-process store with the same conflict
// semantics as the SQLite store.
func NewMemoryStore() Store {
	return &memoryStore{
		questions:     map[string]*Question{},
		surveys:       map[string]*Survey{},
		reports:       map[string]*Report{},
		subscriptions: map[string]*Subscription{},
		orgs:          map[string]*Organization{},
		usersByEmail:  map[string]*User{},
	}
}

func (s *memoryStore) SeedQuestions(qs []*Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) > 0 {
		return nil
	}
	for _, q := range qs {
		cp := *q
		s.questions[q.ID] = &cp
	}
	return nil
}

func (s *memoryStore) ListActiveQuestions() ([]*Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.Active {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *memoryStore) GetQuestionsByIDs(ids []string) (map[string]*Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Question, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			cp := *q
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *memoryStore) InsertSurvey(sv *Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.surveys {
		if existing.OrgID != sv.OrgID {
			continue
		}
		if sv.Type == "baseline" && existing.Type == "baseline" {
			return ErrDuplicate
		}
		if sv.Type == "pulse" && existing.Type == "pulse" && existing.Month == sv.Month {
			return ErrDuplicate
		}
	}
	cp := *sv
	s.surveys[sv.ID] = &cp
	return nil
}

func (s *memoryStore) GetSurvey(id string) (*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sv, ok := s.surveys[id]; ok {
		cp := *sv
		return &cp, nil
	}
	return nil, nil
}

func (s *memoryStore) FindBaseline(orgID string) (*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && sv.Type == "baseline" {
			cp := *sv
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) LatestFullSurvey(orgID string) (*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Survey
	for _, sv := range s.surveys {
		if sv.OrgID != orgID || (sv.Type != "baseline" && sv.Type != "quarterly") {
			continue
		}
		if latest == nil || sv.CreatedAt.After(latest.CreatedAt) {
			latest = sv
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *memoryStore) HasQuarterly(orgID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && sv.Type == "quarterly" {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) FindPulse(orgID, month string) (*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sv := range s.surveys {
		if sv.OrgID == orgID && sv.Type == "pulse" && sv.Month == month {
			cp := *sv
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) InsertReport(r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.SurveyID]; ok {
		return ErrDuplicate
	}
	cp := *r
	s.reports[r.SurveyID] = &cp
	return nil
}

func (s *memoryStore) FindReportBySurvey(surveyID string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reports[surveyID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *memoryStore) CountReportsByOrg(orgID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.reports {
		if r.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) UpsertBenchmark(b *Benchmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	for i, existing := range s.benchmarks {
		if existing.Year == b.Year && existing.Source == b.Source {
			cp.ID = existing.ID
			s.benchmarks[i] = &cp
			return nil
		}
	}
	s.benchmarks = append(s.benchmarks, &cp)
	return nil
}

func (s *memoryStore) LatestBenchmark() (*Benchmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Benchmark
	for _, b := range s.benchmarks {
		if latest == nil || b.Year > latest.Year ||
			(b.Year == latest.Year && b.UpdatedAt.After(latest.UpdatedAt)) {
			latest = b
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *memoryStore) GetSubscription(orgID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.subscriptions[orgID]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (s *memoryStore) UpsertSubscription(sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subscriptions[sub.OrgID] = &cp
	return nil
}

func (s *memoryStore) AddOrganization(o *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orgs[o.ID] = &cp
	return nil
}

func (s *memoryStore) AddUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.usersByEmail[key]; ok {
		return ErrDuplicate
	}
	cp := *u
	s.usersByEmail[key] = &cp
	return nil
}

func (s *memoryStore) FindUserByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.usersByEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditEntry(nil), s.audit...)
}
