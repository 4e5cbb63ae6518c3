package api

// Store is the document-store capability the engine depends on. It is always
// injected, never reached through ambient state, so the engine runs against
// the in-memory implementation in tests and SQLite in production.
//
// Inserts guarded by uniqueness rules (one baseline per org, one pulse per
// org+month, one report per survey) return ErrDuplicate on violation.
type Store interface {
	SeedQuestions(qs []*Question) error
	ListActiveQuestions() ([]*Question, error)
	GetQuestionsByIDs(ids []string) (map[string]*Question, error)

	InsertSurvey(sv *Survey) error
	GetSurvey(id string) (*Survey, error)
	FindBaseline(orgID string) (*Survey, error)
	LatestFullSurvey(orgID string) (*Survey, error)
	HasQuarterly(orgID string) (bool, error)
	FindPulse(orgID, month string) (*Survey, error)

	InsertReport(r *Report) error
	FindReportBySurvey(surveyID string) (*Report, error)
	CountReportsByOrg(orgID string) (int, error)

	UpsertBenchmark(b *Benchmark) error
	LatestBenchmark() (*Benchmark, error)

	GetSubscription(orgID string) (*Subscription, error)
	UpsertSubscription(sub *Subscription) error

	AddOrganization(o *Organization) error
	AddUser(u *User) error
	FindUserByEmail(email string) (*User, error)

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry
}

var _ Store = (*memoryStore)(nil)
