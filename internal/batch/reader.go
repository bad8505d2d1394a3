// Package batch reads job batch files.
package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/denglish/internal/job"
)

// maxLineBytes bounds one batch line; inline base64 media makes lines long.
const maxLineBytes = 64 << 20

// Entry is one job of a batch together with its source line.
type Entry struct {
	Line    int
	Payload job.Payload
}

// ReadBatchFile reads jobs from a file. Supports formats:
//   - Job JSON: {"id": "1", "input": {"audio_base64": "..."}}
//   - Sentence only: "I has a cat" (text job in the default language)
//   - With language: "de = Ich habe ein Hund" (text job in that language)
//
// Empty lines and lines starting with '#' are skipped.
func ReadBatchFile(filename, defaultLang string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	return ReadBatch(f, defaultLang)
}

// ReadBatch reads jobs from r, see ReadBatchFile.
func ReadBatch(r io.Reader, defaultLang string) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		payload, err := ParseLine(line, defaultLang)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, Entry{Line: lineNo, Payload: payload})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}

	return entries, nil
}

// ParseLine converts one non-empty batch line into a job payload.
func ParseLine(line, defaultLang string) (job.Payload, error) {
	if strings.HasPrefix(line, "{") {
		var payload job.Payload
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			return job.Payload{}, fmt.Errorf("invalid job JSON: %w", err)
		}
		return payload, nil
	}

	// Check for the "LANG = sentence" format
	if lang, sentence, ok := strings.Cut(line, "="); ok {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "en" || lang == "de" {
			return job.Payload{Input: job.Request{Text: strings.TrimSpace(sentence), Lang: lang}}, nil
		}
	}

	return job.Payload{Input: job.Request{Text: line, Lang: defaultLang}}, nil
}
