package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tartampluch/go-natal/internal/config"
)

// flagKeys maps command flags onto the viper keys they override.
var flagKeys = map[string]string{
	config.FlagConvention: config.KeyConvention,
	config.FlagSource:     config.KeySourceMode,
	config.FlagPath:       config.KeyLocalPath,
	config.FlagURL:        config.KeyWebURL,
	config.FlagUser:       config.KeyWebUser,
	config.FlagPort:       config.KeyServerPort,
	config.FlagBind:       config.KeyBindAddr,
}

// cli carries the state shared by the subcommands once the root pre-run has
// loaded the settings.
type cli struct {
	settings config.Settings
	logFile  io.Closer
}

// newRootCmd builds the command tree. The returned func closes the log file
// opened by the pre-run, if any.
func newRootCmd() (*cobra.Command, func()) {
	c := &cli{}

	root := &cobra.Command{
		Use:           config.CommandName,
		Short:         config.CmdShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().String(config.FlagConfig, "", config.FlagDescConfig)
	root.PersistentFlags().Bool(config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		newProfileCmd(c),
		newCalendarCmd(c),
		newServeCmd(c),
		newVersionCmd(),
	)

	return root, func() {
		if c.logFile != nil {
			_ = c.logFile.Close()
			c.logFile = nil
		}
	}
}

// init reads configuration, binds the flags of cmd and sets up logging.
func (c *cli) init(cmd *cobra.Command) error {
	if err := initConfig(cmd); err != nil {
		return err
	}

	s, err := config.Load()
	if err != nil {
		return err
	}
	c.settings = s

	debug, _ := cmd.Flags().GetBool(config.FlagDebug)
	c.logFile = setupLogging(config.ParseLogLevel(s.LogLevel), debug)
	logStartupInfo()
	return nil
}

// initConfig prepares the global viper instance: config file, GONATAL_*
// environment variables and the flags of the running command.
func initConfig(cmd *cobra.Command) error {
	viper.Reset()

	if cfgFile, _ := cmd.Flags().GetString(config.FlagConfig); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(config.ConfigFileName)
		viper.SetConfigType(config.ConfigFileType)
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("%s: %w", config.ErrConfigRead, err)
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("%s: %w", config.ErrConfigRead, err)
			}
		}
	}
	return nil
}
