package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/gocalib/internal/app"
	"github.com/philipparndt/gocalib/pkg/calibration"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/store"
	"github.com/spf13/cobra"
)

var pointsJSON bool

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show the stored calibration points",
	Args:  cobra.NoArgs,
	RunE:  runPoints,
}

var pointsSetCmd = &cobra.Command{
	Use:   "set x,y [x,y ...]",
	Short: "Replace the stored calibration points",
	Long:  "Replace the stored points with up to four screen positions in the order top-left, top-right, bottom-right, bottom-left.",
	Args:  cobra.RangeArgs(1, calibration.MaxPoints),
	RunE:  runPointsSet,
}

func init() {
	pointsCmd.Flags().BoolVar(&pointsJSON, "json", false, "print the stored JSON")
	pointsCmd.AddCommand(pointsSetCmd)
	rootCmd.AddCommand(pointsCmd)
}

var cornerNames = [calibration.MaxPoints]string{"top-left", "top-right", "bottom-right", "bottom-left"}

func runPoints(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	pts, err := sess.Points().LoadPoints()
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No calibration points stored")
		return nil
	}
	if err != nil {
		return err
	}

	if pointsJSON {
		data, err := store.EncodePoints(pts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Calibration points (%d/%d):\n", len(pts), calibration.MaxPoints)
	for i, p := range pts {
		fmt.Fprintf(out, "  %-12s (%.2f, %.2f)\n", cornerNames[i]+":", p.X, p.Y)
	}
	return nil
}

func runPointsSet(cmd *cobra.Command, args []string) error {
	pts := make([]geometry.Point, 0, len(args))
	for _, arg := range args {
		p, err := parsePoint(arg)
		if err != nil {
			return err
		}
		pts = append(pts, p)
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Controller().SetPoints(pts); err != nil {
		return err
	}
	if err := sess.Points().SavePoints(pts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d points\n", len(pts))
	return nil
}

func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("invalid point %q, expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return geometry.Point{X: x, Y: y}, nil
}

// openSession builds a headless session from the resolved configuration
func openSession() (*app.Session, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewSession(cfg, logger, app.SessionOptions{})
}
