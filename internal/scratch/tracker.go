// Package scratch owns the temporary files a single job creates and
// removes them exactly once, whichever way the job ends.
package scratch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Purpose describes why an artifact exists.
type Purpose int

const (
	InputAudio Purpose = iota
	OutputAudio
	IntermediateAudio
)

func (p Purpose) String() string {
	switch p {
	case InputAudio:
		return "input_audio"
	case OutputAudio:
		return "output_audio"
	case IntermediateAudio:
		return "intermediate_audio"
	default:
		return "unknown"
	}
}

// Artifact is a request-scoped temporary file.
type Artifact struct {
	Path      string
	Purpose   Purpose
	CreatedAt time.Time
}

// Tracker records the artifacts of one job. It is safe for concurrent
// use, but a Tracker must never be shared between jobs.
type Tracker struct {
	dir string

	mu        sync.Mutex
	artifacts []Artifact
	released  bool
	removed   int
}

// NewTracker creates a tracker whose artifacts live in dir. An empty dir
// means the system temp directory.
func NewTracker(dir string) *Tracker {
	return &Tracker{dir: dir}
}

// Create makes a new empty temp file and registers it before anything
// else can fail. The returned artifact's file is closed.
func (t *Tracker) Create(purpose Purpose, suffix string) (Artifact, error) {
	f, err := os.CreateTemp(t.dir, "denglish-*"+suffix)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create scratch file: %w", err)
	}

	artifact := Artifact{Path: f.Name(), Purpose: purpose, CreatedAt: time.Now()}
	t.Track(artifact)

	if err := f.Close(); err != nil {
		return artifact, fmt.Errorf("failed to close scratch file: %w", err)
	}
	return artifact, nil
}

// Track registers an artifact created elsewhere. Tracking after
// ReleaseAll removes the artifact immediately.
func (t *Tracker) Track(artifact Artifact) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.artifacts = append(t.artifacts, artifact)
	if t.released {
		if removeIfExists(artifact.Path) == nil {
			t.removed++
		}
	}
}

// ReleaseAll removes every tracked artifact. Missing files are not an
// error. Only the first call touches the filesystem.
func (t *Tracker) ReleaseAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return nil
	}
	t.released = true

	var errs []error
	for _, artifact := range t.artifacts {
		if err := removeIfExists(artifact.Path); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s artifact: %w", artifact.Purpose, err))
			continue
		}
		t.removed++
	}
	return errors.Join(errs...)
}

// Artifacts returns a copy of the tracked artifacts.
func (t *Tracker) Artifacts() []Artifact {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Artifact, len(t.artifacts))
	copy(result, t.artifacts)
	return result
}

// Created returns the number of tracked artifacts.
func (t *Tracker) Created() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.artifacts)
}

// Removed returns the number of artifacts that are gone after release,
// including those that had already been deleted by someone else.
func (t *Tracker) Removed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removed
}

type trackerKey struct{}

// WithTracker returns a context carrying t, so engines several calls down
// can register their own intermediate files with the job.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext returns the tracker stored by WithTracker.
func FromContext(ctx context.Context) (*Tracker, bool) {
	t, ok := ctx.Value(trackerKey{}).(*Tracker)
	return t, ok && t != nil
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
