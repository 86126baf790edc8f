package cli

import (
	"fmt"
	"strings"

	"github.com/akmonengine/overlap/gjk"
	"github.com/akmonengine/overlap/internal/scene"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var statusMarks = map[gjk.Status]byte{
	gjk.Separated:    '.',
	gjk.Overlapping:  '#',
	gjk.Inconclusive: '?',
	gjk.Invalid:      '!',
}

func newSweepCmd() *cobra.Command {
	var sw scene.Sweep

	cmd := &cobra.Command{
		Use:   "sweep <scene.yaml>",
		Short: "Move a shape through another one and plot the iterations per position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			s, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			m, err := s.Build()
			if err != nil {
				return err
			}
			solver, err := a.solver(m.Dimension)
			if err != nil {
				return err
			}
			samples, err := sw.Run(solver, m)
			if err != nil {
				return err
			}

			iterations := make([]float64, len(samples))
			var marks strings.Builder
			for i, sample := range samples {
				iterations[i] = float64(sample.Iterations)
				marks.WriteByte(statusMarks[sample.Status])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, asciigraph.Plot(iterations,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("iterations, %s through %s along axis %d", sw.Moving, sw.Fixed, sw.Axis)),
			))
			fmt.Fprintf(out, "offset %g .. %g\n", samples[0].Offset, samples[len(samples)-1].Offset)
			fmt.Fprintf(out, "status %s  (. separated, # overlapping, ? inconclusive, ! invalid)\n", marks.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&sw.Moving, "moving", "", "shape to move (required)")
	cmd.Flags().StringVar(&sw.Fixed, "fixed", "", "shape to move through (required)")
	cmd.Flags().IntVar(&sw.Axis, "axis", 0, "index of the axis to move along")
	cmd.Flags().IntVar(&sw.Steps, "steps", 80, "number of positions")
	_ = cmd.MarkFlagRequired("moving")
	_ = cmd.MarkFlagRequired("fixed")
	return cmd
}
