package job

import (
	"strings"
)

// Language is the language the student is practising.
type Language int

const (
	// EN is English, the default when no language is given.
	EN Language = iota
	// DE is German.
	DE
)

// ParseLanguage maps a wire value to a Language. An empty value is
// English; any other value that is not "en" selects German.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en":
		return EN
	default:
		return DE
	}
}

// Code returns the two-letter wire code.
func (l Language) Code() string {
	if l == DE {
		return "de"
	}
	return "en"
}

func (l Language) String() string {
	return l.Code()
}

// Modality is the kind of payload a request carries.
type Modality int

const (
	ModalityAudio Modality = iota
	ModalityImage
	ModalityText
)

func (m Modality) String() string {
	switch m {
	case ModalityAudio:
		return "audio"
	case ModalityImage:
		return "image"
	case ModalityText:
		return "text"
	default:
		return "unknown"
	}
}

// Request is the job input as received from the caller.
type Request struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Lang        string `json:"lang,omitempty"`
}

// Language returns the parsed target language of the request.
func (r Request) Language() Language {
	return ParseLanguage(r.Lang)
}

// Payload is the job boundary shape: {"id": ..., "input": {...}}.
type Payload struct {
	ID    string  `json:"id,omitempty"`
	Input Request `json:"input"`
}

// ExtractedText is the plain text recovered from the input.
type ExtractedText struct {
	Value  string
	Source Modality
}

// CorrectionResult is the tutor's explanation and corrected sentence.
type CorrectionResult struct {
	Text string
}
