package letters

import (
	"strings"

	"github.com/coverly/coverly/pkg/provider"
)

const letterSystemPrompt = "You write professional cover letters. " +
	"Write in the first person, keep it under one page, and only use facts " +
	"from the job description and resume provided. Output the letter body " +
	"in Markdown with no preamble."

const analysisSystemPrompt = "You extract structured facts from job postings. " +
	"Respond with a single JSON object with the keys: title, company, " +
	"seniority, skills, requirements, keywords, summary. The skills, " +
	"requirements and keywords values are arrays of short strings. Use " +
	"empty values for anything the posting does not state."

// buildLetterMessages assembles the chat messages for one letter.
func buildLetterMessages(in GenerateInput, resumeText string) []provider.Message {
	var b strings.Builder

	b.WriteString("Job description:\n")
	b.WriteString(in.JobDescription)

	if resumeText != "" {
		b.WriteString("\n\nResume:\n")
		b.WriteString(resumeText)
	}
	if in.Company != "" {
		b.WriteString("\n\nCompany: ")
		b.WriteString(in.Company)
	}
	if in.Recipient != "" {
		b.WriteString("\nAddress the letter to: ")
		b.WriteString(in.Recipient)
	}
	if in.Tone != "" {
		b.WriteString("\nTone: ")
		b.WriteString(in.Tone)
	}

	return []provider.Message{
		{Role: provider.RoleSystem, Content: letterSystemPrompt},
		{Role: provider.RoleUser, Content: b.String()},
	}
}

// buildAnalysisMessages assembles the chat messages for one job analysis.
func buildAnalysisMessages(description string) []provider.Message {
	return []provider.Message{
		{Role: provider.RoleSystem, Content: analysisSystemPrompt},
		{Role: provider.RoleUser, Content: description},
	}
}
