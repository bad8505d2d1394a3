package tutor

import (
	"context"
	"strings"

	"codeberg.org/snonux/denglish/internal/job"
)

// Corrector runs the correction stage on top of a Generator.
type Corrector struct {
	generator Generator
	params    Params
}

// NewCorrector creates a corrector. Zero params fall back to DefaultParams.
func NewCorrector(generator Generator, params Params) *Corrector {
	if params.MaxTokens <= 0 {
		params.MaxTokens = DefaultParams().MaxTokens
	}
	return &Corrector{generator: generator, params: params}
}

// Correct asks the generator to correct and explain the extracted text.
func (c *Corrector) Correct(ctx context.Context, extracted job.ExtractedText, lang job.Language) (job.CorrectionResult, error) {
	prompt := BuildPrompt(extracted.Value, extracted.Source, lang)

	reply, err := c.generator.Generate(ctx, prompt, c.params)
	if err != nil {
		return job.CorrectionResult{}, job.Wrap(job.GenerationFailed, err, "language model failed (%s)", c.generator.Name())
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return job.CorrectionResult{}, job.Errorf(job.GenerationFailed, "language model returned an empty reply (%s)", c.generator.Name())
	}

	return job.CorrectionResult{Text: reply}, nil
}
