// Package pipeline sequences the stages of a tutoring job and guarantees
// that the job's scratch artifacts are gone before its result is returned.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"codeberg.org/snonux/denglish/internal"
	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/scratch"
)

// Extractor converts a resolved input into text.
type Extractor interface {
	Extract(ctx context.Context, input job.Input, lang job.Language, tracker *scratch.Tracker) (job.ExtractedText, error)
}

// Corrector produces the tutor feedback for extracted text.
type Corrector interface {
	Correct(ctx context.Context, extracted job.ExtractedText, lang job.Language) (job.CorrectionResult, error)
}

// Synthesizer speaks the tutor feedback.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang job.Language, tracker *scratch.Tracker) ([]byte, error)
}

// Stages are the engines a job runs through.
type Stages struct {
	Extractor   Extractor
	Corrector   Corrector
	Synthesizer Synthesizer
}

// Outcome summarizes a finished job. It never carries the payloads.
type Outcome struct {
	JobID     string
	InputType string
	Envelope  job.Envelope
	Started   time.Time
	Duration  time.Duration
}

// Recorder persists job outcomes.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// Config holds orchestrator settings.
type Config struct {
	ScratchDir   string        // empty means the system temp directory
	StageTimeout time.Duration // per stage; 0 disables

	Logger   *slog.Logger
	Observer Observer
	Recorder Recorder
}

// Orchestrator runs jobs. It is safe for concurrent use as long as the
// stages are.
type Orchestrator struct {
	stages Stages
	config Config
	logger *slog.Logger
}

// New creates an orchestrator.
func New(config Config, stages Stages) *Orchestrator {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{stages: stages, config: config, logger: logger}
}

// run carries the per-job state.
type run struct {
	id      string
	state   State
	input   job.Input
	tracker *scratch.Tracker
	logger  *slog.Logger
	observe Observer
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.logger.Debug("job state", "from", from.String(), "state", to.String())
	if r.observe != nil {
		r.observe(r.id, from, to)
	}
}

func (r *run) inputType() string {
	if r.input == nil {
		return ""
	}
	return r.input.Modality().String()
}

// payloadOf returns the raw payload of in, for fingerprinting only.
func payloadOf(in job.Input) string {
	switch in := in.(type) {
	case job.AudioInput:
		return in.Encoded
	case job.ImageInput:
		return in.Encoded
	case job.TextInput:
		return in.Text
	default:
		return ""
	}
}

// Process runs req through every stage and returns its envelope. The
// scratch artifacts of the job are removed on every path out, panics
// included.
func (o *Orchestrator) Process(ctx context.Context, req job.Request) (envelope job.Envelope) {
	id := req.ID
	if id == "" {
		id = internal.GenerateJobID()
	}

	r := &run{
		id:      id,
		state:   StateStart,
		tracker: scratch.NewTracker(o.config.ScratchDir),
		logger:  o.logger.With("job_id", id),
		observe: o.config.Observer,
	}
	started := time.Now()

	// Deferred calls run last in first out: recover, then release, then record.
	defer func() {
		o.record(ctx, r, envelope, started)
	}()
	defer func() {
		if err := r.tracker.ReleaseAll(); err != nil {
			r.logger.Error("failed to remove scratch artifacts", "error", err)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("job panicked", "state", r.state.String(), "panic", p, "stack", string(debug.Stack()))
			envelope = o.fail(r, job.Errorf(job.InternalError, "internal error in %s", r.state))
		}
	}()

	r.transition(StateResolving)
	input, err := job.Resolve(req)
	if err != nil {
		return o.fail(r, err)
	}
	r.input = input
	lang := req.Language()
	r.logger = r.logger.With("input_type", r.inputType(), "lang", lang.Code(),
		"fingerprint", internal.Fingerprint(payloadOf(input)))

	r.transition(StateExtracting)
	var extracted job.ExtractedText
	err = o.stage(ctx, func(ctx context.Context) (err error) {
		extracted, err = o.stages.Extractor.Extract(ctx, input, lang, r.tracker)
		return err
	})
	if err != nil {
		return o.fail(r, err)
	}

	r.transition(StateCorrecting)
	var correction job.CorrectionResult
	err = o.stage(ctx, func(ctx context.Context) (err error) {
		correction, err = o.stages.Corrector.Correct(ctx, extracted, lang)
		return err
	})
	if err != nil {
		return o.fail(r, err)
	}

	r.transition(StateSynthesizing)
	var speech []byte
	err = o.stage(ctx, func(ctx context.Context) (err error) {
		speech, err = o.stages.Synthesizer.Synthesize(ctx, correction.Text, lang, r.tracker)
		return err
	})
	if err != nil {
		return o.fail(r, err)
	}

	r.transition(StateAssembling)
	envelope = job.Success(extracted, correction, speech)

	r.transition(StateDone)
	r.logger.Info("job finished", "duration", time.Since(started))
	return envelope
}

// stage runs fn under the configured stage timeout.
func (o *Orchestrator) stage(ctx context.Context, fn func(context.Context) error) error {
	if o.config.StageTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()
	return fn(ctx)
}

func (o *Orchestrator) fail(r *run, err error) job.Envelope {
	envelope := job.Failure(err)
	level := slog.LevelWarn
	if envelope.Kind == job.InternalError {
		level = slog.LevelError
	}
	r.logger.Log(context.Background(), level, "job failed",
		"state", r.state.String(), "kind", envelope.Kind.String(), "error", err)
	r.transition(StateFailed)
	return envelope
}

func (o *Orchestrator) record(ctx context.Context, r *run, envelope job.Envelope, started time.Time) {
	if o.config.Recorder == nil {
		return
	}
	outcome := Outcome{
		JobID:     r.id,
		InputType: r.inputType(),
		Envelope:  envelope,
		Started:   started,
		Duration:  time.Since(started),
	}
	// The job result must survive a canceled request context
	if err := o.config.Recorder.Record(context.WithoutCancel(ctx), outcome); err != nil {
		r.logger.Warn("failed to record job outcome", "error", fmt.Errorf("history: %w", err))
	}
}
