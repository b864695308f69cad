package ai

import "resumescore/internal/config"

// SystemPrompts contains the system-level instructions for each operation
type SystemPrompts struct {
	Summarize string
	Rewrite   string
	Chat      string
	Match     string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	Summarize string
	Rewrite   string
	Chat      string
	Match     string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	Summarize: `You are an experienced recruiter and resume reviewer. You write short, honest assessments of resumes.

- Only refer to skills and experience that appear in the resume
- Be specific and constructive
- Keep each field to two or three sentences`,

	Rewrite: `You are an expert resume writer with a strict commitment to honesty and accuracy.

- NEVER invent skills, employers, dates, or metrics
- Keep every fact from the original text
- Prefer strong action verbs and concise, quantified statements
- Return only the rewritten section text, with no commentary`,

	Chat: `You are a helpful career advisor. Answer questions about the candidate's resume using only the resume content provided.
If the resume does not contain the answer, say so plainly. Keep answers under 200 words.`,

	Match: `You are an applicant tracking system analyst. You compare resumes with job descriptions and report keyword coverage.
Only list keywords that appear in the job description. Respond with JSON only.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	Summarize: `The resume below received an overall quality score of %.2f out of 100.%s

Write a JSON object with two string fields:
- "strengths": what the resume does well
- "weaknesses": what most limits it

**Resume:**
-----
%s
-----`,

	Rewrite: `Rewrite the following resume section of type "%s" so it is clearer and more impactful.

**Section:**
-----
%s
-----`,

	Chat: `**Resume:**
-----
%s
-----

**Question:** %s`,

	Match: `Compare the resume with the job description.

Return a JSON object with:
- "matchScore": integer from 0 to 100 describing how well the resume fits the job
- "matchingKeywords": job keywords that the resume covers
- "missingKeywords": job keywords that the resume lacks

**Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,
}

// systemPrompt selects a configured prompt, falling back to the default
func systemPrompt(op config.OperationSettings) string {
	if op.SystemPrompt != "" {
		return op.SystemPrompt
	}
	switch op.Name {
	case config.OperationSummarize:
		return DefaultSystemPrompts.Summarize
	case config.OperationRewrite:
		return DefaultSystemPrompts.Rewrite
	case config.OperationChat:
		return DefaultSystemPrompts.Chat
	case config.OperationMatch:
		return DefaultSystemPrompts.Match
	}
	return ""
}
