package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/engine"
	"github.com/tartampluch/go-natal/internal/lexicon"
	"github.com/tartampluch/go-natal/internal/natal"
	"gopkg.in/yaml.v3"
)

func newProfileCmd(c *cli) *cobra.Command {
	var date, clock, format string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: config.CmdProfileShort,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, err := natal.ParseConvention(c.settings.Convention)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrConvention, err)
			}

			p, err := natal.ComputeNatalProfileWith(date, clock, conv)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrProfile, err)
			}
			if p == nil {
				// Blank date: the profile is absent, not invalid.
				return nil
			}

			lex, err := lexicon.New()
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), format, *p, lex, engine.RealClock{})
		},
	}

	cmd.Flags().StringVar(&date, config.FlagDate, "", config.FlagDescDate)
	cmd.Flags().StringVar(&clock, config.FlagTime, "", config.FlagDescTime)
	cmd.Flags().StringVar(&format, config.FlagFormat, config.FormatText, config.FlagDescFormat)
	cmd.Flags().String(config.FlagConvention, config.DefaultConvention, config.FlagDescConvention)
	_ = cmd.MarkFlagRequired(config.FlagDate)

	return cmd
}

// writeProfile renders p in the requested format. The text format is
// prefixed by a greeting for the current time of day.
func writeProfile(w io.Writer, format string, p natal.NatalProfile, lex *lexicon.Lexicon, clock engine.Clock) error {
	var err error
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(p)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(p); err == nil {
			err = enc.Close()
		}
	case config.FormatText:
		_, err = fmt.Fprintf(w, "%s!\n\n%s", lex.Greeting(clock.Now()), lex.ProfileText(p))
	default:
		return fmt.Errorf("%s: %q", config.ErrOutputFormat, format)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}
