package extract

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errEmptyPayload = errors.New("decoded payload is empty")

// DecodeBase64 decodes a client supplied payload. It accepts an optional
// data URL prefix, embedded whitespace, and both the standard and the URL
// alphabet with or without padding.
func DecodeBase64(encoded string) ([]byte, error) {
	s := encoded
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)

	encoding := base64.RawStdEncoding
	if strings.ContainsAny(s, "-_") {
		encoding = base64.RawURLEncoding
	}

	data, err := encoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptyPayload
	}
	return data, nil
}
