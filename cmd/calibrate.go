package cmd

import (
	"github.com/philipparndt/gocalib/internal/app"
	"github.com/spf13/cobra"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Open the projection window",
	Long: `Open the projection window. Press C to switch between calibration and display
mode. While calibrating, click four corners and drag them onto the mat; Tab
selects a corner for the arrow keys and Shift+Tab toggles showing all corners.`,
	Args: cobra.NoArgs,
	RunE: runCalibrate,
}

func init() {
	calibrateCmd.Flags().BoolVarP(&flags.Fullscreen, "fullscreen", "f", false, "open the window in fullscreen")
	rootCmd.Flags().AddFlagSet(calibrateCmd.Flags())
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	return app.Run(cfg, logger)
}
