// Package recommend turns score deficits into a short, prioritized list of
// improvements. It is a pure rule engine.
package recommend

import (
	"slices"
	"sort"

	"resumescore/internal/scoring"
	"resumescore/internal/types"
)

// Generator evaluates the rule table under one policy. It holds no mutable
// state and is safe for concurrent use.
type Generator struct {
	policy *scoring.Policy
}

// NewGenerator creates a Generator. A nil policy selects the embedded one.
func NewGenerator(p *scoring.Policy) *Generator {
	if p == nil {
		p = scoring.DefaultPolicy()
	}
	return &Generator{policy: p}
}

// Generate returns at most one recommendation per category, sorted by
// priority then impact.
func (g *Generator) Generate(in Input) []types.Recommendation {
	best := make(map[types.Category]types.Recommendation)
	var order []types.Category

	for _, r := range rules {
		if !r.applies(in, g.policy) {
			continue
		}
		impact := scoring.Round2(clampImpact(r.gain(in, g.policy)))
		if impact <= 0 {
			continue
		}

		current, seen := best[r.category]
		if seen && current.ImpactScore >= impact {
			continue
		}
		if !seen {
			order = append(order, r.category)
		}
		best[r.category] = types.Recommendation{
			ID:          r.id,
			Title:       r.title,
			Description: r.description(in, g.policy),
			Category:    r.category,
			Priority:    PriorityFor(impact, g.policy),
			ImpactScore: impact,
			ActionSteps: slices.Clone(r.actionSteps),
			Example:     r.example,
		}
	}

	recs := make([]types.Recommendation, 0, len(best))
	for _, c := range order {
		recs = append(recs, best[c])
	}
	sortRecommendations(recs)
	return recs
}

// Generate runs the rule table with policy p (nil for the embedded policy).
func Generate(scores types.SubscoreSet, signals types.SectionSignals, skills []types.SkillMatch, p *scoring.Policy) []types.Recommendation {
	return NewGenerator(p).Generate(Input{Scores: scores, Signals: signals, Skills: skills})
}

// PriorityFor maps a potential score gain to a priority.
func PriorityFor(gain float64, p *scoring.Policy) types.Priority {
	switch {
	case gain >= p.Priority.High:
		return types.PriorityHigh
	case gain >= p.Priority.Medium:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func sortRecommendations(recs []types.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.ImpactScore != b.ImpactScore {
			return a.ImpactScore > b.ImpactScore
		}
		return a.Title < b.Title
	})
}

func clampImpact(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
