// Package models lists the OpenAI models the configured key can use for
// transcription, speech synthesis and tutoring.
package models
