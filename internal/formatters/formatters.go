package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumescore/internal/types"
)

// Data type keys used by the registry
const (
	TypeAnalysis = "analysis"
	TypeJobMatch = "jobMatch"
	TypeRewrite  = "rewrite"
	TypeChat     = "chat"
	TypeAny      = "any"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", TypeAnalysis, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeJobMatch, &JobMatchTextFormatter{})
	registry.RegisterFormatter("markdown", TypeJobMatch, &JobMatchMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeRewrite, &RewriteTextFormatter{})
	registry.RegisterFormatter("markdown", TypeRewrite, &RewriteMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeChat, &ChatTextFormatter{})
	registry.RegisterFormatter("markdown", TypeChat, &ChatMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

// deref lets callers pass results by pointer or by value
func deref(data any) any {
	switch v := data.(type) {
	case *types.Analysis:
		if v != nil {
			return *v
		}
	case *types.JobMatch:
		if v != nil {
			return *v
		}
	case *types.RewriteResult:
		if v != nil {
			return *v
		}
	case *types.ChatAnswer:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.Analysis:
		return TypeAnalysis
	case types.JobMatch:
		return TypeJobMatch
	case types.RewriteResult:
		return TypeRewrite
	case types.ChatAnswer:
		return TypeChat
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// AnalysisTextFormatter handles text formatting for analyses
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.Analysis)
	if !ok {
		return "", fmt.Errorf("expected Analysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	fmt.Fprintf(&output, "Analysis ID: %s\n", result.ID)
	if result.FileName != "" {
		fmt.Fprintf(&output, "File: %s\n", result.FileName)
	}
	if result.TargetRole != "" {
		fmt.Fprintf(&output, "Target Role: %s\n", result.TargetRole)
	}
	fmt.Fprintf(&output, "Policy Version: %s\n\n", result.PolicyVersion)

	output.WriteString("=== SCORES ===\n")
	fmt.Fprintf(&output, "Overall:      %6.2f/100\n", result.Overall)
	fmt.Fprintf(&output, "ATS:          %6.2f/100\n", result.Scores.ATS)
	fmt.Fprintf(&output, "Completeness: %6.2f/100\n", result.Scores.Completeness)
	fmt.Fprintf(&output, "Keywords:     %6.2f/100\n", result.Scores.Keyword)
	fmt.Fprintf(&output, "Formatting:   %6.2f/100\n\n", result.Scores.Formatting)

	output.WriteString("=== SUMMARY ===\n")
	output.WriteString("Strengths:\n")
	output.WriteString(result.StrengthsSummary)
	output.WriteString("\n\nWeaknesses:\n")
	output.WriteString(result.WeaknessesSummary)
	output.WriteString("\n\n")

	output.WriteString("=== SKILLS ===\n")
	if len(result.Skills) == 0 {
		output.WriteString("No recognized skills found.\n")
	}
	for _, s := range result.Skills {
		demand := ""
		if s.InDemand {
			demand = " (in demand)"
		}
		fmt.Fprintf(&output, "- %s [%s] confidence %d%%, mentioned %dx%s\n",
			s.Name, s.Category, s.ConfidenceLevel, s.Frequency, demand)
	}
	output.WriteString("\n")

	output.WriteString("=== RECOMMENDATIONS ===\n")
	if len(result.Recommendations) == 0 {
		output.WriteString("No recommendations.\n")
	}
	for i, r := range result.Recommendations {
		fmt.Fprintf(&output, "%d. [%s] %s (%s, impact %.2f)\n", i+1, r.Priority, r.Title, r.Category, r.ImpactScore)
		fmt.Fprintf(&output, "   %s\n", r.Description)
		for _, step := range r.ActionSteps {
			fmt.Fprintf(&output, "   - %s\n", step)
		}
		if r.Example != "" {
			fmt.Fprintf(&output, "   Example: %s\n", r.Example)
		}
	}

	return output.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return TypeAnalysis
}

// AnalysisMarkdownFormatter handles markdown formatting for analyses
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.Analysis)
	if !ok {
		return "", fmt.Errorf("expected Analysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	fmt.Fprintf(&output, "**Overall Score:** %.2f/100\n\n", result.Overall)

	output.WriteString("## Scores\n\n")
	output.WriteString("| Component | Score |\n|---|---|\n")
	fmt.Fprintf(&output, "| ATS | %.2f |\n", result.Scores.ATS)
	fmt.Fprintf(&output, "| Completeness | %.2f |\n", result.Scores.Completeness)
	fmt.Fprintf(&output, "| Keywords | %.2f |\n", result.Scores.Keyword)
	fmt.Fprintf(&output, "| Formatting | %.2f |\n\n", result.Scores.Formatting)

	output.WriteString("## Summary\n\n")
	output.WriteString("### Strengths\n")
	output.WriteString(result.StrengthsSummary)
	output.WriteString("\n\n### Weaknesses\n")
	output.WriteString(result.WeaknessesSummary)
	output.WriteString("\n\n")

	if len(result.Skills) > 0 {
		output.WriteString("## Skills\n\n")
		for _, s := range result.Skills {
			fmt.Fprintf(&output, "- **%s** (%s), confidence %d%%\n", s.Name, s.Category, s.ConfidenceLevel)
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for i, r := range result.Recommendations {
			fmt.Fprintf(&output, "### %d. %s\n\n", i+1, r.Title)
			fmt.Fprintf(&output, "*%s priority, %s, impact %.2f*\n\n", r.Priority, r.Category, r.ImpactScore)
			output.WriteString(r.Description)
			output.WriteString("\n\n")
			for _, step := range r.ActionSteps {
				fmt.Fprintf(&output, "- %s\n", step)
			}
			if len(r.ActionSteps) > 0 {
				output.WriteString("\n")
			}
			if r.Example != "" {
				fmt.Fprintf(&output, "> %s\n\n", r.Example)
			}
		}
	}

	return output.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return TypeAnalysis
}

// JobMatchTextFormatter handles text formatting for job match results
type JobMatchTextFormatter struct{}

func (f *JobMatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobMatch)
	if !ok {
		return "", fmt.Errorf("expected JobMatch, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== JOB MATCH ===\n\n")
	if !result.Success {
		output.WriteString("Job matching is currently unavailable.\n")
		return output.String(), nil
	}
	fmt.Fprintf(&output, "Match Score: %d/100\n\n", result.MatchScore)
	output.WriteString("Matching Keywords:\n")
	writeList(&output, result.MatchingKeywords, "- ")
	output.WriteString("\nMissing Keywords:\n")
	writeList(&output, result.MissingKeywords, "- ")

	return output.String(), nil
}

func (f *JobMatchTextFormatter) SupportedType() string {
	return TypeJobMatch
}

// JobMatchMarkdownFormatter handles markdown formatting for job match results
type JobMatchMarkdownFormatter struct{}

func (f *JobMatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobMatch)
	if !ok {
		return "", fmt.Errorf("expected JobMatch, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Job Match\n\n")
	if !result.Success {
		output.WriteString("Job matching is currently unavailable.\n")
		return output.String(), nil
	}
	fmt.Fprintf(&output, "**Match Score:** %d/100\n\n", result.MatchScore)
	output.WriteString("## Matching Keywords\n\n")
	writeList(&output, result.MatchingKeywords, "- ")
	output.WriteString("\n## Missing Keywords\n\n")
	writeList(&output, result.MissingKeywords, "- ")

	return output.String(), nil
}

func (f *JobMatchMarkdownFormatter) SupportedType() string {
	return TypeJobMatch
}

// RewriteTextFormatter handles text formatting for rewritten sections
type RewriteTextFormatter struct{}

func (f *RewriteTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RewriteResult)
	if !ok {
		return "", fmt.Errorf("expected RewriteResult, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "=== REWRITTEN %s ===\n\n", strings.ToUpper(result.SectionType))
	output.WriteString(result.Rewritten)
	output.WriteString("\n")
	if !result.Augmented {
		output.WriteString("\n(AI rewriting unavailable, original text returned)\n")
	}
	return output.String(), nil
}

func (f *RewriteTextFormatter) SupportedType() string {
	return TypeRewrite
}

// RewriteMarkdownFormatter handles markdown formatting for rewritten sections
type RewriteMarkdownFormatter struct{}

func (f *RewriteMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RewriteResult)
	if !ok {
		return "", fmt.Errorf("expected RewriteResult, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# Rewritten %s\n\n", result.SectionType)
	output.WriteString(result.Rewritten)
	output.WriteString("\n\n## Original\n\n")
	output.WriteString(result.Original)
	output.WriteString("\n")
	if !result.Augmented {
		output.WriteString("\n*AI rewriting unavailable, original text returned.*\n")
	}
	return output.String(), nil
}

func (f *RewriteMarkdownFormatter) SupportedType() string {
	return TypeRewrite
}

// ChatTextFormatter handles text formatting for chat answers
type ChatTextFormatter struct{}

func (f *ChatTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ChatAnswer)
	if !ok {
		return "", fmt.Errorf("expected ChatAnswer, got %T", data)
	}
	return fmt.Sprintf("Q: %s\nA: %s\n", result.Question, result.Answer), nil
}

func (f *ChatTextFormatter) SupportedType() string {
	return TypeChat
}

// ChatMarkdownFormatter handles markdown formatting for chat answers
type ChatMarkdownFormatter struct{}

func (f *ChatMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ChatAnswer)
	if !ok {
		return "", fmt.Errorf("expected ChatAnswer, got %T", data)
	}
	return fmt.Sprintf("**Q:** %s\n\n%s\n", result.Question, result.Answer), nil
}

func (f *ChatMarkdownFormatter) SupportedType() string {
	return TypeChat
}

func writeList(b *strings.Builder, items []string, prefix string) {
	if len(items) == 0 {
		b.WriteString(prefix + "(none)\n")
		return
	}
	for _, item := range items {
		b.WriteString(prefix + item + "\n")
	}
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
