package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/denglish/internal/batch"
	"codeberg.org/snonux/denglish/internal/cli"
	"codeberg.org/snonux/denglish/internal/history"
	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/pipeline"
	"codeberg.org/snonux/denglish/internal/server"
)

// ErrJobFailed reports that at least one job produced an error envelope.
var ErrJobFailed = errors.New("job failed")

// Processor handles running jobs through the pipeline
type Processor struct {
	flags        *cli.Flags
	settings     Settings
	logger       *slog.Logger
	orchestrator *pipeline.Orchestrator
	history      *history.Store
	health       func() error
}

// NewProcessor creates the engines and the pipeline described by settings
func NewProcessor(ctx context.Context, flags *cli.Flags, settings Settings, logger *slog.Logger) (*Processor, error) {
	engines, err := NewEngines(ctx, settings)
	if err != nil {
		return nil, err
	}
	return newProcessor(flags, settings, engines.Guarded(settings.Breaker, logger), logger)
}

func newProcessor(flags *cli.Flags, settings Settings, engines *Engines, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{flags: flags, settings: settings, logger: logger, health: engines.Health}

	config := pipeline.Config{
		ScratchDir:   settings.ScratchDir,
		StageTimeout: settings.StageTimeout,
		Logger:       logger,
	}

	if settings.HistoryPath != "" {
		store, err := history.Open(settings.HistoryPath)
		if err != nil {
			return nil, err
		}
		p.history = store
		config.Recorder = store
	}

	p.orchestrator = pipeline.New(config, engines.Stages(settings, logger))
	return p, nil
}

// Close releases the job history.
func (p *Processor) Close() error {
	if p.history == nil {
		return nil
	}
	err := p.history.Close()
	p.history = nil
	return err
}

// RunJob processes one job JSON read from r and writes the envelope to w
func (p *Processor) RunJob(ctx context.Context, r io.Reader, w io.Writer) error {
	var payload job.Payload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return fmt.Errorf("invalid job JSON: %w", err)
	}

	req := payload.Input
	req.ID = payload.ID
	envelope := p.orchestrator.Process(ctx, req)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if !envelope.OK() {
		return fmt.Errorf("%w: %s", ErrJobFailed, envelope.Error)
	}
	return nil
}

// RunJobFile processes the job in path, or stdin when path is empty or "-"
func (p *Processor) RunJobFile(ctx context.Context, path string, w io.Writer) error {
	if path == "" || path == "-" {
		return p.RunJob(ctx, os.Stdin, w)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read job file: %w", err)
	}
	defer f.Close()

	return p.RunJob(ctx, f, w)
}

// BatchResult is one line of batch output.
type BatchResult struct {
	Line int    `json:"line"`
	ID   string `json:"id,omitempty"`
	job.Envelope
}

// ProcessBatch processes every job of the batch file and writes one JSON
// line per job, in file order
func (p *Processor) ProcessBatch(ctx context.Context, w io.Writer) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile, p.flags.Lang)
	if err != nil {
		return err
	}

	results := make([]BatchResult, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.flags.Parallel, 1))
	for i, entry := range entries {
		g.Go(func() error {
			req := entry.Payload.Input
			req.ID = entry.Payload.ID
			results[i] = BatchResult{Line: entry.Line, ID: req.ID, Envelope: p.orchestrator.Process(ctx, req)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Write results in file order
	encoder := json.NewEncoder(w)
	errorCount := 0
	for _, result := range results {
		if !result.OK() {
			errorCount++
		}
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	p.logger.Info("batch finished", "total", len(results), "succeeded", len(results)-errorCount, "failed", errorCount)
	if errorCount > 0 {
		return fmt.Errorf("%w: %d of %d jobs", ErrJobFailed, errorCount, len(results))
	}
	return nil
}

// Serve runs the HTTP server until ctx is canceled
func (p *Processor) Serve(ctx context.Context) error {
	config := p.settings.Server
	config.Logger = p.logger
	config.Health = p.health

	srv := server.New(p.orchestrator, config)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}

	if p.history != nil {
		summary, err := p.history.Summarize(context.Background())
		if err == nil {
			p.logger.Info("job history", "total", summary.Total, "succeeded", summary.Succeeded, "failed_by_kind", summary.ByKind)
		}
	}
	return nil
}

// ShowHistory prints the outcome ledger at settings.HistoryPath.
func ShowHistory(ctx context.Context, settings Settings, w io.Writer, limit int) error {
	if settings.HistoryPath == "" {
		return errors.New("no job history configured (set --history or history.path)")
	}
	if _, err := os.Stat(settings.HistoryPath); err != nil {
		return fmt.Errorf("job history %s: %w", settings.HistoryPath, err)
	}

	store, err := history.Open(settings.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Report(ctx, w, max(limit, 1))
}
