package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"
	"resumescore/internal/types"
)

const defaultOperationTimeout = 30 * time.Second

// ChatUnavailableMessage is the answer given when the model cannot be reached
const ChatUnavailableMessage = "The AI assistant is currently unavailable. Please try again later."

// Summary is the strengths and weaknesses narrative of an analysis
type Summary struct {
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
}

var fallbackSummaries = [...]Summary{
	{
		Strengths:  "The resume is well structured, complete and rich in relevant keywords.",
		Weaknesses: "Only minor refinements remain. Tailor keywords and achievements to each target role.",
	},
	{
		Strengths:  "The resume covers the core sections and shows relevant skills.",
		Weaknesses: "Keyword coverage and quantified achievements can be improved to stand out.",
	},
	{
		Strengths:  "The resume provides a starting point that can be built upon.",
		Weaknesses: "Important sections or relevant keywords are missing, which lowers ATS compatibility.",
	},
}

// FallbackSummary returns the fixed summary for the score band of overall:
// 80 and above, 60 to 79, and below 60. Neither field is ever empty.
func FallbackSummary(overall float64) Summary {
	switch {
	case overall >= 80:
		return fallbackSummaries[0]
	case overall >= 60:
		return fallbackSummaries[1]
	default:
		return fallbackSummaries[2]
	}
}

// Truncate returns the first n runes of s. n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Augmenter runs the optional language model operations. Every method
// returns a usable value; a non-nil error means the fallback was used and
// is meant for logging only.
type Augmenter struct {
	completer ChatCompleter
	cfg       *config.Config
	logger    *errors.Logger
	metrics   *observability.Metrics
}

// NewAugmenter creates an Augmenter. metrics may be nil.
func NewAugmenter(completer ChatCompleter, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) *Augmenter {
	return &Augmenter{
		completer: completer,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Completer returns the underlying ChatCompleter
func (a *Augmenter) Completer() ChatCompleter {
	return a.completer
}

// Summarize writes a strengths and weaknesses narrative for a resume
func (a *Augmenter) Summarize(ctx context.Context, text string, overall float64, targetRole string) (Summary, error) {
	fallback := FallbackSummary(overall)

	roleLine := ""
	if role := strings.TrimSpace(targetRole); role != "" {
		roleLine = fmt.Sprintf(" The candidate is targeting the role of %s.", role)
	}
	prompt := fmt.Sprintf(DefaultUserPrompts.Summarize, overall, roleLine,
		Truncate(text, a.cfg.AI.Limits.ResumeRunes))

	reply, err := a.call(ctx, config.OperationSummarize, prompt, summarySchema)
	if err != nil {
		return fallback, err
	}

	var summary Summary
	if err := a.decode(reply, summarySchema, &summary); err != nil {
		a.record(ctx, config.OperationSummarize, true)
		return fallback, err
	}
	summary.Strengths = strings.TrimSpace(summary.Strengths)
	summary.Weaknesses = strings.TrimSpace(summary.Weaknesses)
	if summary.Strengths == "" || summary.Weaknesses == "" {
		a.record(ctx, config.OperationSummarize, true)
		return fallback, errors.NewAugmentationError(errors.ErrCodeInvalidAIResponse,
			"summary response has an empty field", nil)
	}

	a.record(ctx, config.OperationSummarize, false)
	return summary, nil
}

// Rewrite improves one resume section. On failure the input is returned
// unchanged.
func (a *Augmenter) Rewrite(ctx context.Context, sectionText, sectionType string) (string, error) {
	if strings.TrimSpace(sectionText) == "" {
		return sectionText, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"section text is empty", nil)
	}
	if strings.TrimSpace(sectionType) == "" {
		sectionType = "general"
	}

	prompt := fmt.Sprintf(DefaultUserPrompts.Rewrite, sectionType,
		Truncate(sectionText, a.cfg.AI.Limits.ResumeRunes))

	reply, err := a.call(ctx, config.OperationRewrite, prompt, nil)
	if err != nil {
		return sectionText, err
	}

	a.record(ctx, config.OperationRewrite, false)
	return reply, nil
}

// Chat answers a question about a resume. On failure it answers with
// ChatUnavailableMessage.
func (a *Augmenter) Chat(ctx context.Context, question, resumeContext string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.NewValidationError(errors.ErrCodeEmptyQuestion,
			"question is empty", nil)
	}

	prompt := fmt.Sprintf(DefaultUserPrompts.Chat,
		Truncate(resumeContext, a.cfg.AI.Limits.ResumeRunes),
		Truncate(question, a.cfg.AI.Limits.QuestionRunes))

	reply, err := a.call(ctx, config.OperationChat, prompt, nil)
	if err != nil {
		return ChatUnavailableMessage, err
	}

	a.record(ctx, config.OperationChat, false)
	return reply, nil
}

// MatchJob scores how well a resume fits a job description. On failure the
// result is a zero score with empty keyword lists and Success false.
func (a *Augmenter) MatchJob(ctx context.Context, resumeText, jobDescription string) (types.JobMatch, error) {
	fallback := types.JobMatch{
		MatchingKeywords: []string{},
		MissingKeywords:  []string{},
	}
	if strings.TrimSpace(jobDescription) == "" {
		return fallback, errors.NewValidationError(errors.ErrCodeEmptyJobDescription,
			"job description is empty", nil)
	}

	prompt := fmt.Sprintf(DefaultUserPrompts.Match,
		Truncate(resumeText, a.cfg.AI.Limits.ResumeRunes),
		Truncate(jobDescription, a.cfg.AI.Limits.JobRunes))

	reply, err := a.call(ctx, config.OperationMatch, prompt, jobMatchSchema)
	if err != nil {
		return fallback, err
	}

	var raw struct {
		MatchScore       float64  `json:"matchScore"`
		MatchingKeywords []string `json:"matchingKeywords"`
		MissingKeywords  []string `json:"missingKeywords"`
	}
	if err := a.decode(reply, jobMatchSchema, &raw); err != nil {
		a.record(ctx, config.OperationMatch, true)
		return fallback, err
	}
	// models sometimes answer with a fractional score
	match := types.JobMatch{
		MatchScore:       int(math.Round(min(max(raw.MatchScore, 0), 100))),
		MatchingKeywords: raw.MatchingKeywords,
		MissingKeywords:  raw.MissingKeywords,
	}
	if match.MatchingKeywords == nil {
		match.MatchingKeywords = []string{}
	}
	if match.MissingKeywords == nil {
		match.MissingKeywords = []string{}
	}
	match.Success = true

	a.record(ctx, config.OperationMatch, false)
	return match, nil
}

// call sends one request under the operation's deadline. It records a
// fallback when the request fails.
func (a *Augmenter) call(ctx context.Context, operation, prompt string, schema map[string]any) (string, error) {
	op := a.cfg.Operation(operation)
	timeout := op.Timeout
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := a.completer.CompleteChat(ctx, ChatRequest{
		Operation:    operation,
		SystemPrompt: systemPrompt(op),
		UserPrompt:   prompt,
		MaxTokens:    op.MaxTokens,
		Temperature:  op.Temperature,
		JSON:         schema != nil,
		Schema:       schema,
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = errors.NewAugmentationError(errors.ErrCodeInvalidAIResponse, "empty response", nil)
	}
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errors.NewAugmentationError(errors.ErrCodeAITimeout,
				fmt.Sprintf("%s timed out after %s", operation, timeout), err)
		}
		a.record(ctx, operation, true)
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (a *Augmenter) decode(reply string, schema map[string]any, out any) error {
	doc := extractJSON(reply)
	if err := validateJSON(schema, doc); err != nil {
		return errors.NewAugmentationError(errors.ErrCodeInvalidAIResponse,
			"AI response failed validation", err)
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return errors.NewAugmentationError(errors.ErrCodeInvalidAIResponse,
			"failed to parse AI response", err)
	}
	return nil
}

func (a *Augmenter) record(ctx context.Context, operation string, fallback bool) {
	a.metrics.RecordAugmentation(ctx, operation, fallback)
	if fallback && a.logger != nil {
		a.logger.Debug("AI operation used fallback", "operation", operation)
	}
}
