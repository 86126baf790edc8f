package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/akmonengine/overlap/internal/scene"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrExpectations is returned by check when a pair does not end in its expected status.
var ErrExpectations = errors.New("expectations not met")

func newCheckCmd() *cobra.Command {
	var workers int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check <scene.yaml>...",
		Short: "Evaluate every pair of one or more scene files",
		Long: `Loads each scene file, tests its pairs for overlap and prints a summary per scene.
Scenes are evaluated concurrently. The command fails if any pair does not end in the
status listed under "expect".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Workers
			}

			reports, err := a.check(cmd, args, workers)
			if err != nil {
				return err
			}

			mismatches := 0
			for _, r := range reports {
				mismatches += printReport(cmd.OutOrStdout(), r, verbose)
			}
			if mismatches > 0 {
				return fmt.Errorf("%w: %d pair(s)", ErrExpectations, mismatches)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "workers per scene (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every pair")
	return cmd
}

// check evaluates the scene files concurrently and returns the reports in argument order.
func (a *app) check(cmd *cobra.Command, paths []string, workers int) ([]*scene.Report, error) {
	reports := make([]*scene.Report, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := scene.Load(path)
			if err != nil {
				return err
			}
			detector, err := a.detector(s.Dimension)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			report, err := scene.Evaluate(detector, s, workers)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			a.logger.Info("scene evaluated",
				zap.String("scene", report.Scene),
				zap.Int("pairs", len(report.Entries)),
				zap.Int("inconclusive", report.Summary.Inconclusive),
				zap.Uint64("fingerprint", report.Fingerprint),
			)
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// printReport writes one scene and returns its number of mismatches.
func printReport(w io.Writer, r *scene.Report, verbose bool) int {
	s := r.Summary
	fmt.Fprintf(w, "%s: %d pairs, %d separated, %d overlapping, %d inconclusive, %d invalid, %d fallbacks, fingerprint %016x\n",
		r.Scene, len(r.Entries), s.Separated, s.Overlapping, s.Inconclusive, s.Invalid, s.Fallbacks, r.Fingerprint)

	mismatches := 0
	for _, e := range r.Entries {
		switch {
		case e.Mismatch():
			mismatches++
			fmt.Fprintf(w, "  FAIL %s: want %s, got %s\n", e.Pair, e.Expected, e.Result.Status)
		case verbose:
			fmt.Fprintf(w, "  %s: %s in %d iterations\n", e.Pair, e.Result.Status, e.Result.Iterations)
		}
	}
	return mismatches
}
