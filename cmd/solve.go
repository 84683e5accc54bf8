package cmd

import (
	"fmt"

	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/homography"
	"github.com/spf13/cobra"
)

var solveInverse bool

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Print the homography of the stored calibration",
	Long:  "Print the 3x3 matrix mapping mat coordinates (in points) onto the screen.",
	Args:  cobra.NoArgs,
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().BoolVar(&solveInverse, "inverse", false, "print the screen to mat mapping instead")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	m, ok := sess.Controller().Homography()
	if !ok {
		pts := sess.Controller().Points()
		if err := sess.Controller().LastError(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d of 4 points stored", homography.ErrDegenerate, len(pts))
	}
	snap := sess.Controller().Snapshot()
	corners := homography.Rectangle(snap.Width, snap.Height, snap.Density)
	if solveInverse {
		if m, err = m.Inverse(); err != nil {
			return err
		}
		m = m.Normalize()
		copy(corners[:], snap.Points)
	}

	out := cmd.OutOrStdout()
	for row := 0; row < 3; row++ {
		fmt.Fprintf(out, "%14.6f %14.6f %14.6f\n", m[row*3], m[row*3+1], m[row*3+2])
	}

	fmt.Fprintln(out)
	for i, c := range corners {
		p := geometry.TransformPoint(c, m)
		fmt.Fprintf(out, "%-13s (%.2f, %.2f) -> (%.2f, %.2f)\n", cornerNames[i]+":", c.X, c.Y, p.X, p.Y)
	}
	return nil
}
