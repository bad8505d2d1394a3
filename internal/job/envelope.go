package job

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Status values of a successful envelope.
const (
	StatusSuccess = "success"
)

// Envelope is the job result returned to the caller. On failure only
// Error is set and every other field is omitted from the JSON form.
type Envelope struct {
	Status         string `json:"status,omitempty"`
	InputType      string `json:"input_type,omitempty"`
	RecognizedText string `json:"recognized_text,omitempty"`
	AIText         string `json:"ai_text,omitempty"`
	AIAudioBase64  string `json:"ai_audio_base64,omitempty"`
	Error          string `json:"error,omitempty"`

	// Kind is the failure class, kept for logging and history only.
	Kind Kind `json:"-"`
}

// Success assembles a successful envelope.
func Success(extracted ExtractedText, correction CorrectionResult, audio []byte) Envelope {
	return Envelope{
		Status:         StatusSuccess,
		InputType:      extracted.Source.String(),
		RecognizedText: extracted.Value,
		AIText:         correction.Text,
		AIAudioBase64:  base64.StdEncoding.EncodeToString(audio),
	}
}

// Failure converts err into an error envelope.
func Failure(err error) Envelope {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return Envelope{Error: jobErr.Error(), Kind: jobErr.Kind}
	}
	return Envelope{Error: fmt.Sprintf("processing failed: %v", err), Kind: InternalError}
}

// OK reports whether the envelope is a success.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess && e.Error == ""
}
