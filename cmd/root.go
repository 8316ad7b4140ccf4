/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FelipeSilva10/longboard-IDE/internal/config"
	"github.com/FelipeSilva10/longboard-IDE/internal/logging"
)

var (
	cfgFile  string
	settings = config.New()
	cfg      *config.Config
	log      *zap.SugaredLogger = logging.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "longboard",
	Short: "Flash Arduino/ESP32 sketches and watch their serial output",
	Long: `longboard compiles and uploads sketches with arduino-cli and streams the
board's serial output, making sure an upload and the serial monitor never
fight over the same USB port.

Configuration is read from $HOME/.longboard.yaml (or --config) and from
LONGBOARD_* environment variables, e.g. LONGBOARD_FLASH_HANDOFF=confirmed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.longboard.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().Int("baud", 9600, "serial baud rate")

	_ = settings.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = settings.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = settings.BindPFlag("serial.baud_rate", rootCmd.PersistentFlags().Lookup("baud"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.ReadFile(settings, cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var err error
	cfg, err = config.Decode(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log = logging.Must(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if used := settings.ConfigFileUsed(); used != "" {
		log.Debugw("using config file", "path", used)
	}
}
