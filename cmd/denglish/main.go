package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/denglish/internal/cli"
	"codeberg.org/snonux/denglish/internal/logging"
	"codeberg.org/snonux/denglish/internal/models"
	"codeberg.org/snonux/denglish/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create commands
	cmds := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmds.Serve.RunE = func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd.Context(), flags, func(p *processor.Processor) error {
			return p.Serve(cmd.Context())
		})
	}

	cmds.Run.RunE = func(cmd *cobra.Command, args []string) error {
		return withProcessor(cmd.Context(), flags, func(p *processor.Processor) error {
			if flags.BatchFile != "" {
				return p.ProcessBatch(cmd.Context(), os.Stdout)
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return p.RunJobFile(cmd.Context(), path, os.Stdout)
		})
	}

	cmds.Models.RunE = func(cmd *cobra.Command, args []string) error {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels(cmd.Context(), os.Stdout, flags.AllModels)
	}

	cmds.History.RunE = func(cmd *cobra.Command, args []string) error {
		return processor.ShowHistory(cmd.Context(), processor.LoadSettings(), os.Stdout, flags.HistoryLimit)
	}

	// Execute command
	if err := cmds.Root.ExecuteContext(ctx); err != nil {
		// The envelope on stdout already carries job failures
		if !errors.Is(err, processor.ErrJobFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func withProcessor(ctx context.Context, flags *cli.Flags, fn func(*processor.Processor) error) error {
	settings := processor.LoadSettings()

	logger, err := logging.New(os.Stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	proc, err := processor.NewProcessor(ctx, flags, settings, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := proc.Close(); err != nil {
			logger.Warn("failed to close job history", "error", err)
		}
	}()

	return fn(proc)
}
