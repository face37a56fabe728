package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/logging"
)

var (
	settingsPath string
	logLevel     string
	modeFlag     string
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "htmlreader",
		Short:         "Read untrusted HTML documents safely",
		Long:          "Sanitizes and isolates HTML documents according to an operating mode, then serves or writes them as self-contained reader pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (.json, .yaml or .toml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Operating mode, overriding the settings file")

	cmd.AddCommand(newServeCmd(), newRenderCmd(), newBatchCmd(), newModesCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *logging.Logger {
	return logging.FromLevel(logLevel, false)
}

// loadSettings reads the settings file, if any, and applies --mode.
func loadSettings(logger *logging.Logger) (settings.Settings, error) {
	store, err := settings.NewStore(settingsPath, logger.Component("settings"))
	if err != nil {
		return settings.Settings{}, err
	}
	s, err := store.Load()
	if err != nil {
		return settings.Settings{}, err
	}
	if modeFlag != "" {
		m, err := policy.ParseMode(modeFlag)
		if err != nil {
			return settings.Settings{}, err
		}
		s.OperatingMode = m.ID()
	}
	return s, nil
}
