// Package cli implements the overlap command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/akmonengine/overlap"
	"github.com/akmonengine/overlap/gjk"
	"github.com/akmonengine/overlap/internal/config"
	"github.com/akmonengine/overlap/internal/observability"
	"github.com/akmonengine/overlap/internal/scene"
	"github.com/akmonengine/overlap/vec"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time with -ldflags "-X github.com/akmonengine/overlap/internal/cli.Version=...".
var Version = "dev"

type contextKey int

const appKey contextKey = iota

// app is what the persistent pre-run hands to subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	runID  string
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "overlap",
		Short:         "Test convex shapes of any dimension for overlap.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			observability.Initialize(cfg.Logger, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
			a := &app{
				cfg:   cfg,
				runID: uuid.NewString(),
			}
			a.logger = observability.GetLogger().With(zap.String("run_id", a.runID))
			a.logger.Debug("starting", zap.String("command", cmd.Name()), zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./overlap.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newCheckCmd(), newSweepCmd(), newVersionCmd())
	return rootCmd
}

// Execute runs the command line with the given arguments.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Debug("command failed", zap.Error(err))
	}
	return err
}

func appFromContext(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("configuration not initialized")
	}
	return a, nil
}

func (a *app) solver(dim int) (*gjk.Solver[vec.N, float64], error) {
	if dim < 1 || dim > gjk.MaxDimension {
		return nil, fmt.Errorf("%w: dimension %d out of [1, %d]", scene.ErrInvalidScene, dim, gjk.MaxDimension)
	}
	opts := []gjk.Option{gjk.WithLogger(a.logger)}
	if a.cfg.Solver.MaxIterations > 0 {
		opts = append(opts, gjk.WithMaxIterations(a.cfg.Solver.MaxIterations))
	}
	if a.cfg.Solver.Tolerance > 0 {
		opts = append(opts, gjk.WithTolerance(a.cfg.Solver.Tolerance))
	}
	return gjk.New[vec.N, float64](vec.Basis(dim), opts...)
}

func (a *app) detector(dim int) (*overlap.Detector[vec.N, float64], error) {
	solver, err := a.solver(dim)
	if err != nil {
		return nil, err
	}
	detector := overlap.NewDetector(solver)
	detector.FallbackMargin = a.cfg.Solver.FallbackMargin
	detector.Logger = a.logger
	return detector, nil
}
