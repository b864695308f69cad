// Package scoring turns matcher and section signals into 0-100 subscores
// under an explicit, versioned policy.
package scoring

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed policy.toml
var defaultPolicyDoc []byte

var defaultPolicy = sync.OnceValues(func() (*Policy, error) {
	return ParsePolicy(defaultPolicyDoc)
})

// Weights is the convex combination used for the overall score
type Weights struct {
	ATS          float64 `toml:"ats" json:"ats"`
	Completeness float64 `toml:"completeness" json:"completeness"`
	Keyword      float64 `toml:"keyword" json:"keyword"`
	Formatting   float64 `toml:"formatting" json:"formatting"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.ATS + w.Completeness + w.Keyword + w.Formatting
}

// SectionWeights are relative weights of the standard resume sections
type SectionWeights struct {
	Contact    float64 `toml:"contact" json:"contact"`
	Summary    float64 `toml:"summary" json:"summary"`
	Experience float64 `toml:"experience" json:"experience"`
	Education  float64 `toml:"education" json:"education"`
	Skills     float64 `toml:"skills" json:"skills"`
}

// Total returns the sum of the section weights.
func (s SectionWeights) Total() float64 {
	return s.Contact + s.Summary + s.Experience + s.Education + s.Skills
}

type KeywordPolicy struct {
	Saturation int     `toml:"saturation" json:"saturation"`
	Coverage   float64 `toml:"coverage" json:"coverage"`
	Confidence float64 `toml:"confidence" json:"confidence"`
	Demand     float64 `toml:"demand" json:"demand"`
}

type FormattingPolicy struct {
	Base                float64 `toml:"base" json:"base"`
	Bullets             float64 `toml:"bullets" json:"bullets"`
	ActionVerbs         float64 `toml:"action_verbs" json:"actionVerbs"`
	TargetBulletDensity float64 `toml:"target_bullet_density" json:"targetBulletDensity"`
	WallOfTextWords     int     `toml:"wall_of_text_words" json:"wallOfTextWords"`
	WallOfTextPenalty   float64 `toml:"wall_of_text_penalty" json:"wallOfTextPenalty"`
	ShortTextWords      int     `toml:"short_text_words" json:"shortTextWords"`
	ShortTextPenalty    float64 `toml:"short_text_penalty" json:"shortTextPenalty"`
}

type ATSPolicy struct {
	CompletenessWeight    float64 `toml:"completeness_weight" json:"completenessWeight"`
	SkillsSectionBonus    float64 `toml:"skills_section_bonus" json:"skillsSectionBonus"`
	Parseability          float64 `toml:"parseability" json:"parseability"`
	TablePenalty          float64 `toml:"table_penalty" json:"tablePenalty"`
	SpecialCharPenalty    float64 `toml:"special_char_penalty" json:"specialCharPenalty"`
	MaxSpecialCharPenalty float64 `toml:"max_special_char_penalty" json:"maxSpecialCharPenalty"`
	MissingDatesPenalty   float64 `toml:"missing_dates_penalty" json:"missingDatesPenalty"`
}

// PriorityThresholds map a potential score gain to a priority
type PriorityThresholds struct {
	High   float64 `toml:"high" json:"high"`
	Medium float64 `toml:"medium" json:"medium"`
}

// RecommendationPolicy holds the thresholds the rule table tests against
type RecommendationPolicy struct {
	MinSkills                  int     `toml:"min_skills" json:"minSkills"`
	MinBulletDensity           float64 `toml:"min_bullet_density" json:"minBulletDensity"`
	MinActionVerbRatio         float64 `toml:"min_action_verb_ratio" json:"minActionVerbRatio"`
	MinWords                   int     `toml:"min_words" json:"minWords"`
	MissingSectionsForOverhaul int     `toml:"missing_sections_for_overhaul" json:"missingSectionsForOverhaul"`
	QuantifyGain               float64 `toml:"quantify_gain" json:"quantifyGain"`
	ExpandMaxGain              float64 `toml:"expand_max_gain" json:"expandMaxGain"`
	SkillsSectionGainFactor    float64 `toml:"skills_section_gain_factor" json:"skillsSectionGainFactor"`
}

// Policy is every number the deterministic engine depends on
type Policy struct {
	Version         string               `toml:"version" json:"version"`
	Weights         Weights              `toml:"weights" json:"weights"`
	Completeness    SectionWeights       `toml:"completeness" json:"completeness"`
	Keyword         KeywordPolicy        `toml:"keyword" json:"keyword"`
	Formatting      FormattingPolicy     `toml:"formatting" json:"formatting"`
	ATS             ATSPolicy            `toml:"ats" json:"ats"`
	Priority        PriorityThresholds   `toml:"priority" json:"priority"`
	Recommendations RecommendationPolicy `toml:"recommendations" json:"recommendations"`
}

const weightTolerance = 1e-9

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() *Policy {
	p, err := defaultPolicy()
	if err != nil {
		panic(fmt.Sprintf("embedded scoring policy: %v", err))
	}
	return p
}

// ParsePolicy decodes and validates a TOML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if _, err := toml.Decode(string(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode scoring policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPolicy reads a policy file. An empty path returns the embedded policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return defaultPolicy()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}

// Validate checks that the policy is internally consistent.
func (p *Policy) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("scoring policy has no version")
	}
	w := p.Weights
	for name, v := range map[string]float64{"ats": w.ATS, "completeness": w.Completeness, "keyword": w.Keyword, "formatting": w.Formatting} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("overall weights must sum to 1.0, got %v", w.Sum())
	}
	if p.Completeness.Total() <= 0 {
		return fmt.Errorf("section weights must sum to a positive value")
	}
	if p.Keyword.Saturation <= 0 {
		return fmt.Errorf("keyword saturation must be positive, got %d", p.Keyword.Saturation)
	}
	if p.Formatting.TargetBulletDensity <= 0 || p.Formatting.TargetBulletDensity > 1 {
		return fmt.Errorf("target bullet density must be in (0, 1], got %v", p.Formatting.TargetBulletDensity)
	}
	if p.Priority.High <= p.Priority.Medium || p.Priority.Medium < 0 {
		return fmt.Errorf("priority thresholds must satisfy high > medium >= 0, got high=%v medium=%v",
			p.Priority.High, p.Priority.Medium)
	}
	return nil
}
