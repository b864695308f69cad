package scoring

import (
	"math"
	"sort"

	"resumescore/internal/types"
)

// Result is the scored outcome of one resume
type Result struct {
	Scores  types.SubscoreSet
	Overall float64
}

// Compute scores one resume. A resume with no words scores zero everywhere.
func Compute(sig types.SectionSignals, skills []types.SkillMatch, p *Policy) Result {
	if sig.WordCount == 0 {
		return Result{}
	}

	completeness := Completeness(sig, p)
	set := types.SubscoreSet{
		Completeness: completeness,
		Keyword:      Keyword(skills, p),
		Formatting:   Formatting(sig, p),
		ATS:          ATS(completeness, sig, p),
	}
	return Result{Scores: set, Overall: Overall(set, p)}
}

// Completeness is the weighted share of standard sections present.
func Completeness(sig types.SectionSignals, p *Policy) float64 {
	w := p.Completeness
	total := w.Total()
	if total <= 0 || sig.WordCount == 0 {
		return 0
	}

	present := 0.0
	if sig.HasContactInfo {
		present += w.Contact
	}
	if sig.HasSummary {
		present += w.Summary
	}
	if sig.HasExperience {
		present += w.Experience
	}
	if sig.HasEducation {
		present += w.Education
	}
	if sig.HasSkillsSection {
		present += w.Skills
	}
	return Round2(clamp(present / total * 100))
}

// Keyword rewards distinct, confident, in-demand skills. Skills past the
// saturation point add nothing.
func Keyword(skills []types.SkillMatch, p *Policy) float64 {
	if len(skills) == 0 {
		return 0
	}
	kp := p.Keyword

	ranked := make([]types.SkillMatch, len(skills))
	copy(ranked, skills)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConfidenceLevel > ranked[j].ConfidenceLevel
	})
	if len(ranked) > kp.Saturation {
		ranked = ranked[:kp.Saturation]
	}

	var confidence, demand float64
	for _, s := range ranked {
		confidence += float64(s.ConfidenceLevel)
		if s.InDemand {
			demand++
		}
	}
	n := float64(len(ranked))

	score := kp.Coverage*n/float64(kp.Saturation) +
		kp.Confidence*(confidence/n)/100 +
		kp.Demand*(demand/n)
	return Round2(clamp(score))
}

// Formatting scores bullet usage and action verbs, penalizing walls of text
// and suspiciously short documents.
func Formatting(sig types.SectionSignals, p *Policy) float64 {
	if sig.WordCount == 0 {
		return 0
	}
	fp := p.Formatting

	score := fp.Base +
		fp.Bullets*math.Min(1, sig.BulletDensity/fp.TargetBulletDensity) +
		fp.ActionVerbs*sig.ActionVerbRatio

	if sig.BulletDensity == 0 && sig.WordCount >= fp.WallOfTextWords {
		score -= fp.WallOfTextPenalty
	}
	if sig.WordCount < fp.ShortTextWords {
		score -= fp.ShortTextPenalty
	}
	return Round2(clamp(score))
}

// ATS approximates how reliably an applicant tracking system parses the
// resume.
func ATS(completeness float64, sig types.SectionSignals, p *Policy) float64 {
	if sig.WordCount == 0 {
		return 0
	}
	ap := p.ATS

	score := ap.CompletenessWeight * completeness
	if sig.HasSkillsSection {
		score += ap.SkillsSectionBonus
	}
	score += math.Max(0, ap.Parseability-ParseabilityPenalty(sig, p))
	return Round2(clamp(score))
}

// ParseabilityPenalty is the number of ATS points lost to structures that
// confuse parsers.
func ParseabilityPenalty(sig types.SectionSignals, p *Policy) float64 {
	ap := p.ATS
	penalty := 0.0
	if sig.HasTables {
		penalty += ap.TablePenalty
	}
	penalty += math.Min(ap.MaxSpecialCharPenalty, ap.SpecialCharPenalty*float64(sig.SpecialCharCount))
	if !sig.HasDates {
		penalty += ap.MissingDatesPenalty
	}
	return penalty
}

// Overall combines the subscores with the policy weights.
func Overall(s types.SubscoreSet, p *Policy) float64 {
	w := p.Weights
	return Round2(clamp(w.ATS*s.ATS + w.Completeness*s.Completeness + w.Keyword*s.Keyword + w.Formatting*s.Formatting))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
