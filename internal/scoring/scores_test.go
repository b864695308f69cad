package scoring

import (
	"math/rand/v2"
	"testing"

	"resumescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSignals() types.SectionSignals {
	return types.SectionSignals{
		HasContactInfo:       true,
		HasEmail:             true,
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

func sampleSkills() []types.SkillMatch {
	return []types.SkillMatch{
		{Name: "Azure", ConfidenceLevel: 80, Frequency: 2, InDemand: true},
		{Name: "Docker", ConfidenceLevel: 80, Frequency: 2, InDemand: true},
		{Name: "Python", ConfidenceLevel: 80, Frequency: 2, InDemand: true},
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NotNil(t, p)
	assert.Equal(t, "1.0.0", p.Version)
	assert.InDelta(t, 1.0, p.Weights.Sum(), 1e-9)
	assert.Equal(t, 0.30, p.Weights.ATS)
	assert.Equal(t, 0.25, p.Weights.Completeness)
	assert.Equal(t, 0.25, p.Weights.Keyword)
	assert.Equal(t, 0.20, p.Weights.Formatting)
	assert.Greater(t, p.Completeness.Experience, p.Completeness.Summary)
	assert.Greater(t, p.Completeness.Education, p.Completeness.Summary)
}

func TestComputeSampleResume(t *testing.T) {
	p := DefaultPolicy()
	res := Compute(completeSignals(), sampleSkills(), p)

	assert.Equal(t, 100.0, res.Scores.Completeness)
	assert.Equal(t, 47.0, res.Scores.Keyword)
	assert.Equal(t, 82.08, res.Scores.Formatting)
	assert.Equal(t, 100.0, res.Scores.ATS)
	assert.Equal(t, 83.17, res.Overall)
}

func TestComputeEmpty(t *testing.T) {
	res := Compute(types.SectionSignals{}, nil, DefaultPolicy())
	assert.Equal(t, Result{}, res)
}

func TestCompletenessWeighting(t *testing.T) {
	p := DefaultPolicy()
	full := completeSignals()

	noSummary := full
	noSummary.HasSummary = false
	noExperience := full
	noExperience.HasExperience = false
	noEducation := full
	noEducation.HasEducation = false

	assert.Equal(t, 90.0, Completeness(noSummary, p))
	assert.Equal(t, 70.0, Completeness(noExperience, p))
	assert.Equal(t, 75.0, Completeness(noEducation, p))
	assert.Less(t, Completeness(noExperience, p), Completeness(noSummary, p))
	assert.Less(t, Completeness(noEducation, p), Completeness(noSummary, p))
}

func TestKeywordSaturation(t *testing.T) {
	p := DefaultPolicy()
	skillsN := func(n int) []types.SkillMatch {
		out := make([]types.SkillMatch, n)
		for i := range out {
			out[i] = types.SkillMatch{Name: string(rune('A' + i)), ConfidenceLevel: 100, Frequency: 3, InDemand: true}
		}
		return out
	}

	assert.Zero(t, Keyword(nil, p))
	assert.Less(t, Keyword(skillsN(5), p), Keyword(skillsN(10), p))
	assert.Equal(t, 100.0, Keyword(skillsN(15), p))
	assert.Equal(t, Keyword(skillsN(15), p), Keyword(skillsN(25), p))
}

func TestKeywordRewardsDemandAndConfidence(t *testing.T) {
	p := DefaultPolicy()
	base := []types.SkillMatch{{Name: "A", ConfidenceLevel: 60, Frequency: 1}}
	demanded := []types.SkillMatch{{Name: "A", ConfidenceLevel: 60, Frequency: 1, InDemand: true}}
	confident := []types.SkillMatch{{Name: "A", ConfidenceLevel: 100, Frequency: 3}}

	assert.Greater(t, Keyword(demanded, p), Keyword(base, p))
	assert.Greater(t, Keyword(confident, p), Keyword(base, p))
}

func TestFormattingPenalties(t *testing.T) {
	p := DefaultPolicy()

	wall := types.SectionSignals{WordCount: 400}
	assert.Equal(t, 15.0, Formatting(wall, p))

	short := types.SectionSignals{WordCount: 10, BulletDensity: 0.5, ActionVerbRatio: 1}
	assert.Equal(t, 70.0, Formatting(short, p))

	ideal := types.SectionSignals{WordCount: 300, BulletDensity: 0.6, ActionVerbRatio: 1}
	assert.Equal(t, 100.0, Formatting(ideal, p))
}

func TestATSStructurePenalties(t *testing.T) {
	p := DefaultPolicy()
	clean := completeSignals()

	tables := clean
	tables.HasTables = true
	symbols := clean
	symbols.SpecialCharCount = 40
	undated := clean
	undated.HasDates = false
	noSkills := clean
	noSkills.HasSkillsSection = false

	assert.Equal(t, 100.0, ATS(100, clean, p))
	assert.Equal(t, 90.0, ATS(100, tables, p))
	assert.Equal(t, 85.0, ATS(100, symbols, p))
	assert.Equal(t, 95.0, ATS(100, undated, p))
	assert.Equal(t, 70.0, ATS(80, noSkills, p))
}

func TestOverallIsDeclaredWeightedSum(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		sig := types.SectionSignals{
			HasContactInfo:   rng.IntN(2) == 0,
			HasSummary:       rng.IntN(2) == 0,
			HasExperience:    rng.IntN(2) == 0,
			HasEducation:     rng.IntN(2) == 0,
			HasSkillsSection: rng.IntN(2) == 0,
			HasTables:        rng.IntN(2) == 0,
			HasDates:         rng.IntN(2) == 0,
			BulletDensity:    rng.Float64(),
			ActionVerbRatio:  rng.Float64(),
			WordCount:        rng.IntN(800),
			SpecialCharCount: rng.IntN(30),
		}
		var skills []types.SkillMatch
		for i := range rng.IntN(30) {
			skills = append(skills, types.SkillMatch{
				Name:            string(rune('a' + i)),
				ConfidenceLevel: 40 + 20*(1+rng.IntN(3)),
				Frequency:       1,
				InDemand:        rng.IntN(2) == 0,
			})
		}

		res := Compute(sig, skills, p)
		for _, v := range []float64{res.Scores.ATS, res.Scores.Completeness, res.Scores.Keyword, res.Scores.Formatting, res.Overall} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
			assert.Equal(t, Round2(v), v)
		}

		expected := Round2(0.30*res.Scores.ATS + 0.25*res.Scores.Completeness + 0.25*res.Scores.Keyword + 0.20*res.Scores.Formatting)
		if sig.WordCount == 0 {
			expected = 0
		}
		assert.Equal(t, expected, res.Overall)
		assert.Equal(t, res, Compute(sig, skills, p))
	}
}

func TestPolicyValidation(t *testing.T) {
	valid := func() Policy { return *DefaultPolicy() }

	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{"missing version", func(p *Policy) { p.Version = "" }},
		{"weights do not sum to one", func(p *Policy) { p.Weights.ATS = 0.5 }},
		{"negative weight", func(p *Policy) { p.Weights.ATS, p.Weights.Keyword = -0.1, 0.65 }},
		{"zero saturation", func(p *Policy) { p.Keyword.Saturation = 0 }},
		{"bad bullet target", func(p *Policy) { p.Formatting.TargetBulletDensity = 0 }},
		{"inverted priorities", func(p *Policy) { p.Priority.High, p.Priority.Medium = 5, 15 }},
		{"no section weights", func(p *Policy) { p.Completeness = SectionWeights{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}

	p := valid()
	assert.NoError(t, p.Validate())
}

func TestParsePolicyRejectsBadDocument(t *testing.T) {
	_, err := ParsePolicy([]byte("version = \"x\"\n[weights]\nats = 1.5\n"))
	assert.Error(t, err)

	_, err = ParsePolicy([]byte("not toml ="))
	assert.Error(t, err)
}

func TestLoadPolicyFromFile(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)

	_, err = LoadPolicy(t.TempDir() + "/missing.toml")
	assert.Error(t, err)
}
