package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/philipparndt/gocalib/internal/config"
	"github.com/philipparndt/gocalib/internal/logging"
	"github.com/philipparndt/gocalib/pkg/store"
	"github.com/philipparndt/gocalib/pkg/tools"
	"github.com/philipparndt/gocalib/pkg/units"
	"github.com/philipparndt/gocalib/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	flags      config.Flags
)

var rootCmd = &cobra.Command{
	Use:   "gocalib",
	Short: "Projector calibration for cutting mats",
	Long: `gocalib projects a unit grid onto a cutting mat and lets you drag its four
corners until the projection lines up with the printed grid. The calibration
is stored and reused for projecting patterns at true scale.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCalibrate,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default ~/"+config.DefaultDir+"/config.yaml)")
	pf.Float64Var(&flags.Width, "width", 0, "mat width in units")
	pf.Float64Var(&flags.Height, "height", 0, "mat height in units")
	pf.StringVarP(&flags.Unit, "unit", "u", "", fmt.Sprintf("unit of the mat size (%s)", strings.Join(units.Names(), ", ")))
	pf.StringVar(&flags.Backend, "store", "", fmt.Sprintf("point store backend (%s)", strings.Join(store.Backends, ", ")))
	pf.StringVar(&flags.StorePath, "store-path", "", "directory of the file and sqlite stores")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.LogFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&flags.Tool, "tool", "", fmt.Sprintf("overlay tool (%s)", strings.Join(tools.Names(), ", ")))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies the flags and builds the logger
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
