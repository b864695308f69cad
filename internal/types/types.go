package types

import "time"

// SkillMatch is one recognized taxonomy skill found in a resume
type SkillMatch struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	ConfidenceLevel int    `json:"confidenceLevel"` // 0-100
	Frequency       int    `json:"frequency"`
	InDemand        bool   `json:"inDemand"`
}

// SectionSignals holds the structural facts derived from the resume text
type SectionSignals struct {
	HasContactInfo   bool    `json:"hasContactInfo"`
	HasEmail         bool    `json:"hasEmail"`
	HasPhone         bool    `json:"hasPhone"`
	HasSummary       bool    `json:"hasSummary"`
	HasExperience    bool    `json:"hasExperience"`
	HasEducation     bool    `json:"hasEducation"`
	HasSkillsSection bool    `json:"hasSkillsSection"`
	BulletDensity    float64 `json:"bulletDensity"`   // 0-1
	ActionVerbRatio  float64 `json:"actionVerbRatio"` // 0-1

	WordCount            int  `json:"wordCount"`
	LineCount            int  `json:"lineCount"`
	HasDates             bool `json:"hasDates"`
	HasQuantifiedResults bool `json:"hasQuantifiedResults"`
	HasTables            bool `json:"hasTables"`
	SpecialCharCount     int  `json:"specialCharCount"`
}

// SubscoreSet holds the four component scores, each 0-100 with two decimals
type SubscoreSet struct {
	ATS          float64 `json:"ats"`
	Completeness float64 `json:"completeness"`
	Keyword      float64 `json:"keyword"`
	Formatting   float64 `json:"formatting"`
}

// Category groups recommendations by the area they improve
type Category string

const (
	CategoryContent    Category = "Content"
	CategoryFormatting Category = "Formatting"
	CategoryKeywords   Category = "Keywords"
	CategoryATS        Category = "ATS Optimization"
)

// Priority of a recommendation
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Recommendation is an actionable improvement suggestion
type Recommendation struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	ImpactScore float64  `json:"impactScore"` // 0-100
	ActionSteps []string `json:"actionSteps,omitempty"`
	Example     string   `json:"example,omitempty"`
}

// Analysis is the immutable result of scoring one resume
type Analysis struct {
	ID                string           `json:"id"`
	ResumeID          string           `json:"resumeId"`
	FileName          string           `json:"fileName,omitempty"`
	TargetRole        string           `json:"targetRole,omitempty"`
	Industry          string           `json:"industry,omitempty"`
	PolicyVersion     string           `json:"policyVersion"`
	Scores            SubscoreSet      `json:"scores"`
	Overall           float64          `json:"overallScore"`
	StrengthsSummary  string           `json:"strengthsSummary,omitempty"`
	WeaknessesSummary string           `json:"weaknessesSummary,omitempty"`
	Augmented         bool             `json:"augmented"`
	Signals           SectionSignals   `json:"signals"`
	Skills            []SkillMatch     `json:"skills"`
	Recommendations   []Recommendation `json:"recommendations"`
	AnalyzedAt        time.Time        `json:"analyzedAt"`
}

// AnalyzeRequest is the input to a single analysis run
type AnalyzeRequest struct {
	Text       string `json:"text"`
	FileName   string `json:"fileName" validate:"max=255"`
	ResumeID   string `json:"resumeId,omitempty" validate:"omitempty,max=64"`
	TargetRole string `json:"targetRole,omitempty" validate:"max=120"`
	Industry   string `json:"industry,omitempty" validate:"max=120"`
	Augment    bool   `json:"augment,omitempty"`
}

// JobMatchRequest asks how well a resume fits a job description
type JobMatchRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// JobMatch is the structured result of comparing a resume with a job.
// Success is false when the score was not computed by the model.
type JobMatch struct {
	MatchScore       int      `json:"matchScore"` // 0-100
	MatchingKeywords []string `json:"matchingKeywords"`
	MissingKeywords  []string `json:"missingKeywords"`
	Success          bool     `json:"success"`
}

// RewriteRequest asks for one resume section to be rewritten
type RewriteRequest struct {
	SectionText string `json:"sectionText" validate:"required"`
	SectionType string `json:"sectionType" validate:"required,max=64"`
}

// RewriteResult carries a rewritten section. Rewritten equals Original when
// the model could not be used.
type RewriteResult struct {
	SectionType string `json:"sectionType"`
	Original    string `json:"original"`
	Rewritten   string `json:"rewritten"`
	Augmented   bool   `json:"augmented"`
}

// ChatRequest is a question about a resume
type ChatRequest struct {
	Question      string `json:"question" validate:"required"`
	ResumeContext string `json:"resumeContext"`
}

// ChatAnswer is the reply to a ChatRequest
type ChatAnswer struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Augmented bool   `json:"augmented"`
}
