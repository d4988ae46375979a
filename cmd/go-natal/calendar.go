package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/engine"
	"github.com/tartampluch/go-natal/internal/lexicon"
	"github.com/tartampluch/go-natal/internal/worker"
)

func newCalendarCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: config.CmdCalShort,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := worker.SyncConfigFrom(c.settings)
			if err != nil {
				return err
			}
			gen, err := newGenerator()
			if err != nil {
				return err
			}

			ics, contacts, _, err := gen.RunSync(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
			}

			if out == "" {
				if _, err := cmd.OutOrStdout().Write(ics); err != nil {
					return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
				}
				return nil
			}

			if err := os.WriteFile(out, ics, config.FilePermPublic); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			slog.Info(config.MsgCalWritten,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyPath, out,
				config.LogKeyFound, len(contacts))
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().String(config.FlagConvention, config.DefaultConvention, config.FlagDescConvention)
	cmd.Flags().StringVar(&out, config.FlagOut, "", config.FlagDescOut)

	return cmd
}

// addSourceFlags registers the flags selecting the vCard source.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String(config.FlagSource, config.SourceModeLocal, config.FlagDescSource)
	cmd.Flags().String(config.FlagPath, "", config.FlagDescPath)
	cmd.Flags().String(config.FlagURL, "", config.FlagDescURL)
	cmd.Flags().String(config.FlagUser, "", config.FlagDescUser)
}

// newGenerator wires the engine with the real clock, the HTTP fetcher and the
// embedded lexicon.
func newGenerator() (*engine.Generator, error) {
	lex, err := lexicon.New()
	if err != nil {
		return nil, err
	}
	return &engine.Generator{
		Clock:     engine.RealClock{},
		Fetcher:   engine.NewHTTPFetcher(),
		Formatter: lex,
	}, nil
}
