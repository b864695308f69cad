package recommend

import (
	"fmt"
	"math"
	"strings"

	"resumescore/internal/scoring"
	"resumescore/internal/types"
)

// Input is everything the rule table may look at
type Input struct {
	Scores  types.SubscoreSet
	Signals types.SectionSignals
	Skills  []types.SkillMatch
}

// rule pairs a condition with the recommendation it produces. gain is the
// number of score points the fix could recover.
type rule struct {
	id          string
	category    types.Category
	title       string
	description func(in Input, p *scoring.Policy) string
	actionSteps []string
	example     string
	applies     func(in Input, p *scoring.Policy) bool
	gain        func(in Input, p *scoring.Policy) float64
}

func static(s string) func(Input, *scoring.Policy) string {
	return func(Input, *scoring.Policy) string { return s }
}

// sectionShare converts a section weight into completeness points.
func sectionShare(weight float64, p *scoring.Policy) float64 {
	total := p.Completeness.Total()
	if total <= 0 {
		return 0
	}
	return weight / total * 100
}

// missingSections lists the standard sections absent from the resume, in
// reading order.
func missingSections(sig types.SectionSignals) []string {
	var missing []string
	if !sig.HasContactInfo {
		missing = append(missing, "contact information")
	}
	if !sig.HasSummary {
		missing = append(missing, "summary")
	}
	if !sig.HasExperience {
		missing = append(missing, "work experience")
	}
	if !sig.HasEducation {
		missing = append(missing, "education")
	}
	if !sig.HasSkillsSection {
		missing = append(missing, "skills")
	}
	return missing
}

func inDemandShare(skills []types.SkillMatch) float64 {
	if len(skills) == 0 {
		return 0
	}
	n := 0
	for _, s := range skills {
		if s.InDemand {
			n++
		}
	}
	return float64(n) / float64(len(skills))
}

// The rule table. Order matters: on equal impact within a category the
// earlier rule wins.
var rules = []rule{
	// Content
	{
		id:       "complete-sections",
		category: types.CategoryContent,
		title:    "Complete All Required Sections",
		description: func(in Input, _ *scoring.Policy) string {
			missing := missingSections(in.Signals)
			if in.Signals.WordCount == 0 || len(missing) == 0 {
				return "No readable content was found. Make sure the resume includes contact information, a summary, work experience, education and skills."
			}
			return fmt.Sprintf("Your resume is missing these standard sections: %s.", strings.Join(missing, ", "))
		},
		actionSteps: []string{
			"Add a contact line with email and phone number",
			"Write a two to three sentence professional summary",
			"List your work experience with dates and achievements",
			"Add your education and a dedicated skills section",
		},
		applies: func(in Input, p *scoring.Policy) bool {
			return in.Signals.WordCount == 0 ||
				len(missingSections(in.Signals)) >= p.Recommendations.MissingSectionsForOverhaul
		},
		gain: func(in Input, _ *scoring.Policy) float64 { return 100 - in.Scores.Completeness },
	},
	{
		id:          "add-experience",
		category:    types.CategoryContent,
		title:       "Add Work Experience",
		description: static("Recruiters and ATS systems look for a clearly labelled experience section first."),
		actionSteps: []string{
			"Add a section titled \"Experience\"",
			"List roles in reverse chronological order with company, title and dates",
			"Describe two to five achievements per role",
		},
		example: "Senior Engineer, Acme Corp (2019 - Present)",
		applies: func(in Input, _ *scoring.Policy) bool { return in.Signals.WordCount > 0 && !in.Signals.HasExperience },
		gain:    func(_ Input, p *scoring.Policy) float64 { return sectionShare(p.Completeness.Experience, p) },
	},
	{
		id:          "add-education",
		category:    types.CategoryContent,
		title:       "Add Education",
		description: static("Include your degrees, certifications or relevant training under an \"Education\" heading."),
		actionSteps: []string{
			"Add a section titled \"Education\"",
			"List institution, qualification and graduation year",
		},
		example: "B.S. Computer Science, State University, 2015",
		applies: func(in Input, _ *scoring.Policy) bool { return in.Signals.WordCount > 0 && !in.Signals.HasEducation },
		gain:    func(_ Input, p *scoring.Policy) float64 { return sectionShare(p.Completeness.Education, p) },
	},
	{
		id:          "add-summary",
		category:    types.CategoryContent,
		title:       "Add a Professional Summary",
		description: static("A short summary at the top tells the reader who you are and what you are looking for."),
		actionSteps: []string{
			"Add a \"Summary\" section below your contact details",
			"Mention your role, years of experience and strongest skills",
		},
		example: "Backend engineer with eight years of experience building cloud services in Python and Go.",
		applies: func(in Input, _ *scoring.Policy) bool { return in.Signals.WordCount > 0 && !in.Signals.HasSummary },
		gain:    func(_ Input, p *scoring.Policy) float64 { return sectionShare(p.Completeness.Summary, p) },
	},
	{
		id:          "quantify-achievements",
		category:    types.CategoryContent,
		title:       "Quantify Your Achievements",
		description: static("None of your experience lines contain measurable results. Numbers make impact concrete."),
		actionSteps: []string{
			"Add percentages, amounts or team sizes to your achievements",
			"Prefer outcomes over responsibilities",
		},
		example: "Reduced page load time by 40% for 2M monthly users",
		applies: func(in Input, _ *scoring.Policy) bool {
			return in.Signals.HasExperience && !in.Signals.HasQuantifiedResults
		},
		gain: func(_ Input, p *scoring.Policy) float64 { return p.Recommendations.QuantifyGain },
	},
	{
		id:       "expand-content",
		category: types.CategoryContent,
		title:    "Expand Your Resume",
		description: func(in Input, p *scoring.Policy) string {
			return fmt.Sprintf("Your resume has %d words. Aim for at least %d so your experience is fully represented.",
				in.Signals.WordCount, p.Recommendations.MinWords)
		},
		actionSteps: []string{
			"Describe the scope and results of each role",
			"Add relevant projects or certifications",
		},
		applies: func(in Input, p *scoring.Policy) bool {
			return in.Signals.WordCount > 0 && in.Signals.WordCount < p.Recommendations.MinWords
		},
		gain: func(in Input, p *scoring.Policy) float64 {
			rp := p.Recommendations
			if rp.MinWords <= 0 {
				return 0
			}
			return rp.ExpandMaxGain * float64(rp.MinWords-in.Signals.WordCount) / float64(rp.MinWords)
		},
	},

	// Formatting
	{
		id:          "use-bullets",
		category:    types.CategoryFormatting,
		title:       "Use Bullet Points",
		description: static("Dense paragraphs are hard to scan. Bullet points make each achievement stand out."),
		actionSteps: []string{
			"Break long paragraphs into one achievement per line",
			"Start each line with a bullet marker",
		},
		example: "- Migrated billing to event-driven services, cutting costs by 20%",
		applies: func(in Input, p *scoring.Policy) bool {
			return in.Signals.BulletDensity < p.Recommendations.MinBulletDensity
		},
		gain: func(in Input, p *scoring.Policy) float64 {
			fp := p.Formatting
			g := fp.Bullets * (1 - math.Min(1, in.Signals.BulletDensity/fp.TargetBulletDensity))
			if in.Signals.BulletDensity == 0 && in.Signals.WordCount >= fp.WallOfTextWords {
				g += fp.WallOfTextPenalty
			}
			return g
		},
	},
	{
		id:          "action-verbs",
		category:    types.CategoryFormatting,
		title:       "Start Bullets with Strong Action Verbs",
		description: static("Most of your experience lines do not open with an action verb."),
		actionSteps: []string{
			"Begin each achievement with a verb such as Led, Built or Reduced",
			"Avoid phrases like \"Responsible for\"",
		},
		example: "Led a team of 5 engineers to deliver the payments platform",
		applies: func(in Input, p *scoring.Policy) bool {
			return in.Signals.HasExperience && in.Signals.ActionVerbRatio < p.Recommendations.MinActionVerbRatio
		},
		gain: func(in Input, p *scoring.Policy) float64 {
			return p.Formatting.ActionVerbs * (1 - in.Signals.ActionVerbRatio)
		},
	},

	// Keywords
	{
		id:          "add-skills-section",
		category:    types.CategoryKeywords,
		title:       "Add a Skills Section",
		description: static("ATS systems read explicit skill lists most reliably. Add a dedicated skills section."),
		actionSteps: []string{
			"Add a section titled \"Skills\"",
			"List tools, languages and platforms separated by commas",
		},
		example: "Skills: Python, Azure, Docker, PostgreSQL",
		applies: func(in Input, _ *scoring.Policy) bool { return !in.Signals.HasSkillsSection },
		gain: func(in Input, p *scoring.Policy) float64 {
			return p.Recommendations.SkillsSectionGainFactor * (100 - in.Scores.Keyword)
		},
	},
	{
		id:       "more-skills",
		category: types.CategoryKeywords,
		title:    "Add More Relevant Skills",
		description: func(in Input, p *scoring.Policy) string {
			return fmt.Sprintf("Only %d recognized skills were found. Aim for at least %d that match your target role.",
				len(in.Skills), p.Recommendations.MinSkills)
		},
		actionSteps: []string{
			"Mirror the skill names used in job postings you target",
			"Mention skills in context within your experience bullets",
		},
		applies: func(in Input, p *scoring.Policy) bool { return len(in.Skills) < p.Recommendations.MinSkills },
		gain: func(in Input, p *scoring.Policy) float64 {
			missing := p.Recommendations.MinSkills - len(in.Skills)
			return p.Keyword.Coverage * float64(missing) / float64(p.Keyword.Saturation)
		},
	},
	{
		id:          "in-demand-skills",
		category:    types.CategoryKeywords,
		title:       "Highlight In-Demand Skills",
		description: static("Few of your listed skills are currently in high demand. Feature the in-demand ones you have."),
		actionSteps: []string{
			"Move in-demand skills to the top of your skills section",
			"Add cloud, data or automation skills you have used",
		},
		applies: func(in Input, _ *scoring.Policy) bool {
			return len(in.Skills) > 0 && inDemandShare(in.Skills) < 0.5
		},
		gain: func(in Input, p *scoring.Policy) float64 {
			return p.Keyword.Demand * (1 - inDemandShare(in.Skills))
		},
	},

	// ATS Optimization
	{
		id:          "add-contact",
		category:    types.CategoryATS,
		title:       "Add Contact Information",
		description: static("No email address or phone number was found, so a parser cannot create a candidate record."),
		actionSteps: []string{
			"Put your email and phone number in plain text at the top",
			"Avoid placing contact details in headers, footers or images",
		},
		example: "jane.doe@example.com | +1 555 123 4567",
		applies: func(in Input, _ *scoring.Policy) bool { return !in.Signals.HasContactInfo },
		gain:    func(_ Input, p *scoring.Policy) float64 { return sectionShare(p.Completeness.Contact, p) },
	},
	{
		id:          "remove-tables",
		category:    types.CategoryATS,
		title:       "Remove Tables and Columns",
		description: static("Tables and multi-column layouts are often read out of order by ATS parsers."),
		actionSteps: []string{
			"Convert tables into simple lists",
			"Use a single-column layout",
		},
		applies: func(in Input, _ *scoring.Policy) bool { return in.Signals.HasTables },
		gain:    func(_ Input, p *scoring.Policy) float64 { return p.ATS.TablePenalty },
	},
	{
		id:       "remove-special-characters",
		category: types.CategoryATS,
		title:    "Remove Special Characters",
		description: func(in Input, _ *scoring.Policy) string {
			return fmt.Sprintf("Found %d symbols, icons or emoji that ATS parsers may not read correctly.", in.Signals.SpecialCharCount)
		},
		actionSteps: []string{
			"Replace icons and emoji with plain words",
			"Use standard bullet characters",
		},
		applies: func(in Input, _ *scoring.Policy) bool { return in.Signals.SpecialCharCount > 0 },
		gain: func(in Input, p *scoring.Policy) float64 {
			return math.Min(p.ATS.MaxSpecialCharPenalty, p.ATS.SpecialCharPenalty*float64(in.Signals.SpecialCharCount))
		},
	},
	{
		id:          "add-dates",
		category:    types.CategoryATS,
		title:       "Add Dates to Your Experience",
		description: static("No dates were found. ATS systems use them to calculate years of experience."),
		actionSteps: []string{
			"Add start and end dates to every role",
			"Use a consistent format such as \"Jan 2020 - Present\"",
		},
		applies: func(in Input, _ *scoring.Policy) bool { return in.Signals.HasExperience && !in.Signals.HasDates },
		gain:    func(_ Input, p *scoring.Policy) float64 { return p.ATS.MissingDatesPenalty },
	},
}

// RuleIDs lists the rule identifiers in table order.
func RuleIDs() []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.id
	}
	return ids
}

// MissingSectionRules are the rules that fire because a section is absent.
var MissingSectionRules = map[string]bool{
	"complete-sections":  true,
	"add-experience":     true,
	"add-education":      true,
	"add-summary":        true,
	"add-skills-section": true,
	"add-contact":        true,
}
