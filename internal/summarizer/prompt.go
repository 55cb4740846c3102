package summarizer

import (
	"fmt"
	"strings"
)

// DefaultMaxInputChars bounds how much resume text is sent to a provider.
const DefaultMaxInputChars = 15000

// SystemPrompt is sent as the system message with every request.
const SystemPrompt = "You are a resume screening assistant. Format your response with clear section titles and " +
	"structured content, but do not use markdown symbols. Present each section as if it is in a styled UI " +
	"container with bold headings."

// NoTextPlaceholder stands in for the resume when no text could be extracted.
const NoTextPlaceholder = "[No text could be extracted from the PDF. It may be image-based or encrypted. " +
	"Provide general guidance on what information is missing and how the candidate could improve the resume for the role.]"

// BuildPrompt renders the screening prompt. text is trimmed and cut to
// maxChars runes; maxChars <= 0 uses DefaultMaxInputChars.
func BuildPrompt(text, role string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	body := strings.TrimSpace(text)
	if body == "" {
		body = NoTextPlaceholder
	} else if r := []rune(body); len(r) > maxChars {
		body = string(r[:maxChars])
	}
	if strings.TrimSpace(role) == "" {
		role = "Software Engineer"
	}

	return fmt.Sprintf(`You are a resume screening assistant.

Resume (plain text, if provided below):
"""
%s
"""

Role: %s

Tasks:

Summarize the candidate in 3-5 bullets (or explain if text was unavailable).

List 3-5 strengths relevant to the role (or note insufficient data).

List 3-5 gaps/risks (or note insufficient data).

Provide an overall verdict in one short paragraph.

Add a Score Matching section where you rate how well the candidate fits the role on a scale of 1-10, with short justification.

Add a Retention section where you assess the likelihood of the candidate staying long-term (High risk, Moderate risk, or Low risk), with reasoning.

Output Formatting Requirements:

Present each category inside a visually distinct section with a clear title.
Titles should be plain text without raw markdown symbols like ** or ###.

The final output should contain the following sections in order:

Candidate Summary
Strengths
Gaps/Risks
Overall Verdict
Score Matching
Retention`, body, role)
}
