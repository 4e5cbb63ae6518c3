package services

import "sort"

// ActionPolicy selects recommended actions from a score set. The ranking and
// catalog-matching rules are pluggable behind this interface.
type ActionPolicy interface {
	TopActions(scores CategoryScores, n int) []Action
}

// lowestFirstPolicy ranks present categories by ascending score, ties broken
// by category declaration order, and matches each to the action catalog entry
// for its maturity level.
type lowestFirstPolicy struct {
	catalog map[Category]map[Level]string
}

func NewDefaultActionPolicy() ActionPolicy {
	return &lowestFirstPolicy{catalog: defaultActionCatalog}
}

func (p *lowestFirstPolicy) TopActions(scores CategoryScores, n int) []Action {
	ranked := make([]Category, 0, len(scores))
	for _, cat := range CategoryOrder {
		if _, ok := scores[cat]; ok {
			ranked = append(ranked, cat)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] < scores[ranked[j]]
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Action, 0, n)
	for _, cat := range ranked[:n] {
		level := LevelFor(scores[cat])
		out = append(out, Action{Category: cat, Level: level, Title: p.catalog[cat][level]})
	}
	return out
}

var defaultActionCatalog = map[Category]map[Level]string{
	CategoryCollaboration: {
		LevelFoundation: "Move shared files into a cloud workspace and agree on one place per document",
		LevelCore:       "Standardize co-editing and review workflows across teams",
		LevelAdvanced:   "Automate handoffs between collaboration tools and your core systems",
	},
	CategorySecurity: {
		LevelFoundation: "Enable multi-factor authentication on every business account",
		LevelCore:       "Schedule and test backup restores, then document the recovery runbook",
		LevelAdvanced:   "Run periodic phishing drills and review access rights quarterly",
	},
	CategoryFinanceOps: {
		LevelFoundation: "Replace paper invoicing with a digital invoicing tool",
		LevelCore:       "Connect invoicing, banking and accounting so data is entered once",
		LevelAdvanced:   "Automate recurring reconciliation and approval workflows",
	},
	CategorySalesMarketing: {
		LevelFoundation: "Make your website findable and state clearly what you sell",
		LevelCore:       "Track leads in a CRM instead of inboxes and spreadsheets",
		LevelAdvanced:   "Measure channel performance and reinvest in what converts",
	},
	CategorySkillsCulture: {
		LevelFoundation: "Map the digital skills you have against the ones you need",
		LevelCore:       "Reserve regular time and budget for digital upskilling",
		LevelAdvanced:   "Give teams room to pilot new tools and share what works",
	},
}
