package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateJobID creates a unique ID for a job that has none.
// Format: epochMillis_uuid[:8]
func GenerateJobID() string {
	epochMillis := time.Now().UnixMilli()
	id := uuid.New().String()
	return fmt.Sprintf("%d_%s", epochMillis, id[:8])
}

// Fingerprint returns a short, non-reversible tag for a payload so log
// lines can correlate repeated inputs without carrying the content.
func Fingerprint(payload string) string {
	if payload == "" {
		return ""
	}
	hash := md5.Sum([]byte(payload))
	return hex.EncodeToString(hash[:])[:8]
}
