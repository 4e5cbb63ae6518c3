package services

import "sort"

// CatalogStore abstracts question lookups for scoring and listing.
type CatalogStore interface {
	ListActiveQuestions() ([]*Question, error)
	// GetQuestionsByIDs resolves ids to questions, including questions that
	// have since been deactivated (historical surveys may reference them).
	GetQuestionsByIDs(ids []string) (map[string]*Question, error)
}

// CatalogService exposes the active question set to survey-rendering
// collaborators.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// ActiveQuestions returns the active catalog in display order.
func (s *CatalogService) ActiveQuestions() ([]*Question, error) {
	qs, err := s.store.ListActiveQuestions()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	return qs, nil
}

// LegacyCatalogVersion identifies the compiled question ordering used by the
// positional q1..qN answer shape. Legacy surveys predate dynamic question
// management, so this ordering is a frozen artifact, not the live catalog.
const LegacyCatalogVersion = 1

type legacyQuestion struct {
	id       string
	category Category
	weight   float64
}

// legacyQuestionOrder is the frozen q1..q15 ordering. Index 0 is q1.
// Changing this slice retroactively would corrupt historical scoring.
var legacyQuestionOrder = []legacyQuestion{
	{"collab_tools", CategoryCollaboration, 1},
	{"collab_docs", CategoryCollaboration, 1},
	{"collab_remote", CategoryCollaboration, 1},
	{"sec_access", CategorySecurity, 1},
	{"sec_backup", CategorySecurity, 1},
	{"sec_training", CategorySecurity, 1},
	{"fin_invoicing", CategoryFinanceOps, 1},
	{"fin_accounting", CategoryFinanceOps, 1},
	{"fin_automation", CategoryFinanceOps, 1},
	{"mkt_web", CategorySalesMarketing, 1},
	{"mkt_channels", CategorySalesMarketing, 1},
	{"mkt_crm", CategorySalesMarketing, 1},
	{"skill_map", CategorySkillsCulture, 1},
	{"skill_training", CategorySkillsCulture, 1},
	{"skill_culture", CategorySkillsCulture, 1},
}

var legacyQuestionTitles = map[string]string{
	"collab_tools":   "How established are shared cloud collaboration tools in your daily work?",
	"collab_docs":    "How consistently are documents co-edited and versioned in shared workspaces?",
	"collab_remote":  "How well supported is remote and hybrid working across the organization?",
	"sec_access":     "How widely is multi-factor authentication enforced for business accounts?",
	"sec_backup":     "How reliable and tested are your data backup and recovery routines?",
	"sec_training":   "How regularly do staff receive security awareness training?",
	"fin_invoicing":  "How much of your invoicing and billing runs through digital tools?",
	"fin_accounting": "How integrated is your accounting software with day-to-day operations?",
	"fin_automation": "How automated are recurring back-office processes?",
	"mkt_web":        "How effectively does your website support your sales funnel?",
	"mkt_channels":   "How actively do you use digital channels to reach customers?",
	"mkt_crm":        "How systematically is customer data managed in a CRM?",
	"skill_map":      "How well do you understand the digital skills present in your team?",
	"skill_training": "How regularly does the organization invest in digital upskilling?",
	"skill_culture":  "How open is the culture to experimenting with new digital tools?",
}

// DefaultCatalog returns the built-in question set matching the legacy
// ordering, used to seed an empty store.
func DefaultCatalog() []*Question {
	out := make([]*Question, 0, len(legacyQuestionOrder))
	for i, lq := range legacyQuestionOrder {
		out = append(out, &Question{
			ID:       lq.id,
			Category: lq.category,
			Order:    i + 1,
			Weight:   lq.weight,
			Active:   true,
			Version:  LegacyCatalogVersion,
			Title:    legacyQuestionTitles[lq.id],
		})
	}
	return out
}
