package tutor

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/snonux/denglish/internal/job"
)

// UserTrigger is the fixed user turn ("Please grade and correct my work.").
const UserTrigger = "Hãy chấm bài và sửa lỗi cho tôi."

// Prompt is a two-message exchange: system instructions and the user turn.
type Prompt struct {
	System string
	User   string
}

// Params bounds the generation.
type Params struct {
	MaxTokens   int
	Temperature float32
}

// DefaultParams favours determinism over creativity.
func DefaultParams() Params {
	return Params{MaxTokens: 400, Temperature: 0.3}
}

// DisplayName returns the English name of the target language.
func DisplayName(lang job.Language) string {
	tag := language.English
	if lang == job.DE {
		tag = language.German
	}
	return display.English.Languages().Name(tag)
}

// BuildPrompt renders the tutoring prompt for text extracted from source.
func BuildPrompt(text string, source job.Modality, lang job.Language) Prompt {
	name := DisplayName(lang)

	var context string
	if source == job.ModalityImage {
		context = fmt.Sprintf("The user uploaded an image of their %s exercise. Here is the extracted text from OCR: '%s'. Note that OCR might have some typos.", name, text)
	} else {
		context = fmt.Sprintf("The user provided a %s input: '%s'.", name, text)
	}

	system := fmt.Sprintf("You are a friendly and strict %s tutor for Vietnamese students. ", name) +
		context + " " +
		"Task: 1. Correct any grammatical, spelling, or pronunciation mistakes. " +
		"2. Explain the corrections clearly in Vietnamese. " +
		fmt.Sprintf("3. Provide the perfectly corrected sentence in %s at the very end.", name)

	return Prompt{System: system, User: UserTrigger}
}
