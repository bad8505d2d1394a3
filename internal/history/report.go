package history

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"
)

// Report writes the job summary and the limit most recent jobs to w.
func (s *Store) Report(ctx context.Context, w io.Writer, limit int) error {
	summary, err := s.Summarize(ctx)
	if err != nil {
		return err
	}
	entries, err := s.Recent(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Jobs: %d total, %d succeeded, %d failed\n", summary.Total, summary.Succeeded, summary.Total-summary.Succeeded)

	kinds := make([]string, 0, len(summary.ByKind))
	for kind := range summary.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %s: %d\n", kind, summary.ByKind[kind])
	}

	if len(entries) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tJOB\tINPUT\tSTATUS\tDURATION\tERROR")
	for _, entry := range entries {
		status := entry.Status
		if entry.Kind != "" {
			status = entry.Kind
		}
		input := entry.InputType
		if input == "" {
			input = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Started.Format(time.DateTime), entry.JobID, input, status,
			entry.Duration.Round(time.Millisecond), entry.Error)
	}
	return tw.Flush()
}
