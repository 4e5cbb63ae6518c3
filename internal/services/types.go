package services

import "time"

// Category is one of the five fixed capability dimensions a survey scores.
type Category string

const (
	CategoryCollaboration  Category = "collaboration"
	CategorySecurity       Category = "security"
	CategoryFinanceOps     Category = "financeOps"
	CategorySalesMarketing Category = "salesMarketing"
	CategorySkillsCulture  Category = "skillsCulture"
)

// CategoryOrder is the declaration order of the five categories. It is the
// stable secondary sort key wherever scores tie.
var CategoryOrder = []Category{
	CategoryCollaboration,
	CategorySecurity,
	CategoryFinanceOps,
	CategorySalesMarketing,
	CategorySkillsCulture,
}

// ValidCategory reports whether c belongs to the fixed vocabulary.
func ValidCategory(c Category) bool {
	for _, k := range CategoryOrder {
		if k == c {
			return true
		}
	}
	return false
}

// CategoryScores maps categories to scores in [0,5], one decimal place.
// A category with no answered questions has no entry, never a zero.
type CategoryScores map[Category]float64

// Question is a catalog entry. Semantic fields (category, weight, choice
// cardinality) are frozen once a stored survey references the question;
// only title and help text may change afterwards.
type Question struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Order    int      `json:"order"`
	Weight   float64  `json:"weight,omitempty"`
	Active   bool     `json:"active"`
	Version  int      `json:"version"`
	Title    string   `json:"title"`
	Help     string   `json:"help,omitempty"`
}

type SurveyType string

const (
	SurveyBaseline  SurveyType = "baseline"
	SurveyQuarterly SurveyType = "quarterly"
	SurveyPulse     SurveyType = "pulse"
)

// Survey is an immutable submission snapshot. Scores and total are computed
// once at creation and never recomputed, because the catalog evolves and a
// survey's score must reflect the rules in effect when it was taken.
type Survey struct {
	ID             string         `json:"id"`
	OrgID          string         `json:"org_id"`
	UserID         string         `json:"user_id"`
	Type           SurveyType     `json:"type"`
	Month          string         `json:"month,omitempty"` // pulse only, YYYY-MM
	LegacyAnswers  map[string]int `json:"legacy_answers,omitempty"`
	Answers        map[string]int `json:"answers,omitempty"`
	CatalogVersion int            `json:"catalog_version,omitempty"`
	Scores         CategoryScores `json:"scores"`
	Total          float64        `json:"total"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Benchmark is an immutable external reference snapshot for one year/source.
type Benchmark struct {
	ID        string         `json:"id"`
	Year      int            `json:"year"`
	Source    string         `json:"source"`
	Scores    CategoryScores `json:"scores"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BenchmarkInfo records which snapshot a comparison was made against.
type BenchmarkInfo struct {
	Year   int    `json:"year"`
	Source string `json:"source"`
}

// Action is a recommended next step matched to a category and its level.
type Action struct {
	Category Category `json:"category"`
	Level    Level    `json:"level"`
	Title    string   `json:"title"`
}

// ReportSummary is the derived payload stored on a report. Deltas and
// TotalDelta are nil when no benchmark snapshot existed at generation time.
type ReportSummary struct {
	TopActions []Action           `json:"top_actions"`
	Levels     map[Category]Level `json:"levels"`
	Deltas     CategoryScores     `json:"deltas"`
	TotalDelta *float64           `json:"total_delta"`
	Benchmark  *BenchmarkInfo     `json:"benchmark"`
}

// Report is the artifact derived from exactly one survey.
type Report struct {
	ID        string        `json:"id"`
	SurveyID  string        `json:"survey_id"`
	OrgID     string        `json:"org_id"`
	Summary   ReportSummary `json:"summary"`
	CreatedAt time.Time     `json:"created_at"`
}

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is an organization's current plan grant.
type Subscription struct {
	OrgID        string             `json:"org_id"`
	Plan         Plan               `json:"plan"`
	Status       SubscriptionStatus `json:"status"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	NeverExpires bool               `json:"never_expires,omitempty"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	OrgID     string
	Role      string
	CreatedAt time.Time
}

// Identity is the resolved caller for the current request.
type Identity struct {
	UserID string
	OrgID  string
	Role   string
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
