// Package tutor implements the correction stage: it turns the student's
// text into a fixed tutoring prompt, asks a language model for a
// correction with an explanation, and returns the trimmed reply. The
// OpenAI and Gemini generators are interchangeable.
package tutor
