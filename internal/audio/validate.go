package audio

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxInputRunes is the longest text a single TTS request accepts.
const maxInputRunes = 4096

// ValidateText validates that text can be spoken
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("text must be valid UTF-8")
	}
	return nil
}

// truncateRunes shortens text to at most n runes.
func truncateRunes(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
