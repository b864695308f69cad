package recommend

import (
	"math/rand/v2"
	"testing"

	"resumescore/internal/scoring"
	"resumescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSignals() types.SectionSignals {
	return types.SectionSignals{
		HasContactInfo:       true,
		HasEmail:             true,
		HasPhone:             true,
		HasSummary:           true,
		HasExperience:        true,
		HasEducation:         true,
		HasSkillsSection:     true,
		BulletDensity:        1.0 / 3.0,
		ActionVerbRatio:      0.75,
		WordCount:            65,
		HasDates:             true,
		HasQuantifiedResults: true,
	}
}

func threeSkills() []types.SkillMatch {
	return []types.SkillMatch{
		{Name: "Azure", ConfidenceLevel: 80, Frequency: 2, InDemand: true},
		{Name: "Docker", ConfidenceLevel: 80, Frequency: 2, InDemand: true},
		{Name: "Python", ConfidenceLevel: 80, Frequency: 2, InDemand: true},
	}
}

func byCategory(recs []types.Recommendation) map[types.Category]types.Recommendation {
	out := make(map[types.Category]types.Recommendation)
	for _, r := range recs {
		out[r.Category] = r
	}
	return out
}

func TestGenerateEmptyText(t *testing.T) {
	recs := Generate(types.SubscoreSet{}, types.SectionSignals{}, nil, nil)
	require.NotEmpty(t, recs)

	first := recs[0]
	assert.Equal(t, "complete-sections", first.ID)
	assert.Equal(t, "Complete All Required Sections", first.Title)
	assert.Equal(t, types.PriorityHigh, first.Priority)
	assert.Equal(t, 100.0, first.ImpactScore)
	assert.Equal(t, types.CategoryContent, first.Category)
}

func TestGenerateCompleteResume(t *testing.T) {
	p := scoring.DefaultPolicy()
	sig := fullSignals()
	skills := threeSkills()
	res := scoring.Compute(sig, skills, p)

	recs := Generate(res.Scores, sig, skills, p)
	for _, r := range recs {
		assert.False(t, MissingSectionRules[r.ID], "unexpected missing-section recommendation %q", r.Title)
	}

	got := byCategory(recs)
	require.Contains(t, got, types.CategoryKeywords)
	assert.Equal(t, "more-skills", got[types.CategoryKeywords].ID)
	assert.Equal(t, 20.0, got[types.CategoryKeywords].ImpactScore)
	assert.Equal(t, types.PriorityHigh, got[types.CategoryKeywords].Priority)

	require.Contains(t, got, types.CategoryContent)
	assert.Equal(t, "expand-content", got[types.CategoryContent].ID)
	assert.Equal(t, 13.5, got[types.CategoryContent].ImpactScore)
	assert.Equal(t, types.PriorityMedium, got[types.CategoryContent].Priority)

	assert.NotContains(t, got, types.CategoryFormatting)
	assert.NotContains(t, got, types.CategoryATS)
}

func TestHighestImpactWinsWithinCategory(t *testing.T) {
	p := scoring.DefaultPolicy()
	sig := fullSignals()
	sig.HasSummary = false
	sig.HasEducation = false // two missing sections trigger the overhaul rule

	res := scoring.Compute(sig, threeSkills(), p)
	recs := Generate(res.Scores, sig, threeSkills(), p)

	content := byCategory(recs)[types.CategoryContent]
	assert.Equal(t, "complete-sections", content.ID)
	assert.Equal(t, 35.0, content.ImpactScore)
	assert.Contains(t, content.Description, "summary")
	assert.Contains(t, content.Description, "education")
}

func TestSingleMissingSection(t *testing.T) {
	p := scoring.DefaultPolicy()
	tests := []struct {
		name     string
		mutate   func(s *types.SectionSignals)
		id       string
		priority types.Priority
		category types.Category
	}{
		{"experience", func(s *types.SectionSignals) { s.HasExperience = false }, "add-experience", types.PriorityHigh, types.CategoryContent},
		{"education", func(s *types.SectionSignals) { s.HasEducation = false }, "add-education", types.PriorityHigh, types.CategoryContent},
		{"summary", func(s *types.SectionSignals) { s.HasSummary = false }, "add-summary", types.PriorityMedium, types.CategoryContent},
		{"contact", func(s *types.SectionSignals) { s.HasContactInfo = false }, "add-contact", types.PriorityHigh, types.CategoryATS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := fullSignals()
			sig.WordCount = 400
			tt.mutate(&sig)
			res := scoring.Compute(sig, threeSkills(), p)

			rec, ok := byCategory(Generate(res.Scores, sig, threeSkills(), p))[tt.category]
			require.True(t, ok)
			assert.Equal(t, tt.id, rec.ID)
			assert.Equal(t, tt.priority, rec.Priority)
		})
	}
}

func TestSkillsSectionImpactTracksKeywordScore(t *testing.T) {
	p := scoring.DefaultPolicy()
	sig := fullSignals()
	sig.HasSkillsSection = false

	many := make([]types.SkillMatch, 15)
	for i := range many {
		many[i] = types.SkillMatch{Name: string(rune('A' + i)), ConfidenceLevel: 60, Frequency: 1, InDemand: true}
	}

	low := Generate(types.SubscoreSet{Keyword: 20}, sig, many, p)
	high := Generate(types.SubscoreSet{Keyword: 80}, sig, many, p)

	lowRec := byCategory(low)[types.CategoryKeywords]
	highRec := byCategory(high)[types.CategoryKeywords]
	assert.Equal(t, "add-skills-section", lowRec.ID)
	assert.Equal(t, 40.0, lowRec.ImpactScore)
	assert.Equal(t, "add-skills-section", highRec.ID)
	assert.Equal(t, 10.0, highRec.ImpactScore)
	assert.Equal(t, types.PriorityMedium, highRec.Priority)
}

func TestPriorityFor(t *testing.T) {
	p := scoring.DefaultPolicy()
	tests := []struct {
		gain     float64
		expected types.Priority
	}{
		{100, types.PriorityHigh},
		{15, types.PriorityHigh},
		{14.99, types.PriorityMedium},
		{5, types.PriorityMedium},
		{4.99, types.PriorityLow},
		{0.5, types.PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, PriorityFor(tt.gain, p), "gain %v", tt.gain)
	}
}

func TestInvariantsOverRandomInputs(t *testing.T) {
	p := scoring.DefaultPolicy()
	rng := rand.New(rand.NewPCG(7, 11))

	for range 500 {
		sig := types.SectionSignals{
			HasContactInfo:       rng.IntN(2) == 0,
			HasSummary:           rng.IntN(2) == 0,
			HasExperience:        rng.IntN(2) == 0,
			HasEducation:         rng.IntN(2) == 0,
			HasSkillsSection:     rng.IntN(2) == 0,
			HasTables:            rng.IntN(3) == 0,
			HasDates:             rng.IntN(2) == 0,
			HasQuantifiedResults: rng.IntN(2) == 0,
			BulletDensity:        rng.Float64(),
			ActionVerbRatio:      rng.Float64(),
			WordCount:            rng.IntN(600),
			SpecialCharCount:     rng.IntN(10),
		}
		var skills []types.SkillMatch
		for i := range rng.IntN(20) {
			skills = append(skills, types.SkillMatch{Name: string(rune('a' + i)), ConfidenceLevel: 60, Frequency: 1, InDemand: rng.IntN(2) == 0})
		}
		res := scoring.Compute(sig, skills, p)
		recs := Generate(res.Scores, sig, skills, p)

		seen := map[types.Category]bool{}
		for i, r := range recs {
			assert.False(t, seen[r.Category], "duplicate category %s", r.Category)
			seen[r.Category] = true
			assert.GreaterOrEqual(t, r.ImpactScore, 0.0)
			assert.LessOrEqual(t, r.ImpactScore, 100.0)
			assert.Equal(t, PriorityFor(r.ImpactScore, p), r.Priority)

			if i > 0 {
				prev := recs[i-1]
				ordered := prev.Priority.Rank() > r.Priority.Rank() ||
					(prev.Priority == r.Priority && prev.ImpactScore >= r.ImpactScore)
				assert.True(t, ordered, "recommendations out of order at %d", i)
			}
		}
		assert.Equal(t, recs, Generate(res.Scores, sig, skills, p))
	}
}

func TestRuleTableIsWellFormed(t *testing.T) {
	ids := RuleIDs()
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate rule id %s", id)
		seen[id] = true
	}
	for id := range MissingSectionRules {
		assert.True(t, seen[id], "unknown rule id %s", id)
	}

	categories := map[types.Category]bool{}
	for _, r := range rules {
		categories[r.category] = true
		assert.NotEmpty(t, r.title)
		assert.NotNil(t, r.applies)
		assert.NotNil(t, r.gain)
		assert.NotNil(t, r.description)
	}
	assert.Len(t, categories, 4)
}
