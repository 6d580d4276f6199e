// Package category classifies free-text market and runner labels from
// the upstream feed into small closed category sets, so filter options
// stay finite no matter how many distinct raw labels providers produce.
package category

import "strings"

// Market categories.
const (
	MarketAsianHandicap  = "asian-handicap"
	MarketOverUnder      = "over-under"
	MarketMatchOdds      = "match-odds"
	MarketHalfTime       = "half-time"
	MarketGoalLines      = "goal-lines"
	MarketFirstHalfGoals = "first-half-goals"
	MarketOther          = "other"
)

// Selection categories.
const (
	SelectionOver  = "over"
	SelectionUnder = "under"
	SelectionHome  = "home"
	SelectionAway  = "away"
	SelectionDraw  = "draw"
	SelectionOther = "other"
)

// MarketCategories is the closed set of market categories in display order.
var MarketCategories = []string{
	MarketOverUnder,
	MarketMatchOdds,
	MarketHalfTime,
	MarketAsianHandicap,
	MarketGoalLines,
	MarketFirstHalfGoals,
	MarketOther,
}

// SelectionCategories is the closed set of selection categories in display order.
var SelectionCategories = []string{
	SelectionOver,
	SelectionUnder,
	SelectionHome,
	SelectionAway,
	SelectionDraw,
	SelectionOther,
}

// marketRules are matched in order; the first rule whose keyword is a
// substring of the lower-cased market name wins. Order matters:
// "handicap" must beat "total", and "total/over/under" must beat the
// generic match-odds keywords.
var marketRules = []struct {
	keywords []string
	category string
}{
	{[]string{"handicap"}, MarketAsianHandicap},
	{[]string{"total", "over", "under"}, MarketOverUnder},
	{[]string{"match", "1x2"}, MarketMatchOdds},
	{[]string{"half", "ht"}, MarketHalfTime},
	{[]string{"goal", "gl"}, MarketGoalLines},
	{[]string{"first", "1st"}, MarketFirstHalfGoals},
}

// exactSelections maps canonical runner spellings to their category.
// Checked before the substring rules so a bare "1" or "x" classifies.
var exactSelections = map[string]string{
	"home":  SelectionHome,
	"1":     SelectionHome,
	"team1": SelectionHome,
	"away":  SelectionAway,
	"2":     SelectionAway,
	"team2": SelectionAway,
	"draw":  SelectionDraw,
	"x":     SelectionDraw,
}

// Market maps a raw market name to its category. Total: absent or
// unrecognized input maps to MarketOther.
func Market(name string) string {
	if name == "" {
		return MarketOther
	}
	n := strings.ToLower(name)
	for _, rule := range marketRules {
		for _, kw := range rule.keywords {
			if strings.Contains(n, kw) {
				return rule.category
			}
		}
	}
	return MarketOther
}

// Selection maps a raw runner label to its category. Total: absent or
// unrecognized input maps to SelectionOther.
func Selection(runner string) string {
	if runner == "" {
		return SelectionOther
	}
	r := strings.ToLower(runner)
	if strings.Contains(r, "over") {
		return SelectionOver
	}
	if strings.Contains(r, "under") {
		return SelectionUnder
	}
	if cat, ok := exactSelections[r]; ok {
		return cat
	}
	return SelectionOther
}
