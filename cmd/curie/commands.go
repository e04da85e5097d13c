package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-curie/batch"
	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/inversion"
	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/spectrum"
	"github.com/cwbudde/algo-curie/synth"
)

// survey builds the synthetic grid described by the run file.
func (a *app) survey() (*grid.Grid, error) {
	s := a.run.Survey
	g, err := synth.Field(s.Rows, s.Cols, s.Spacing, s.Model.params(), rand.New(rand.NewPCG(s.Seed, 0)))
	if err != nil {
		return nil, err
	}
	if s.Upward > 0 {
		g, err = g.UpwardContinue(s.Upward)
		if err != nil {
			return nil, err
		}
	}
	a.logger.Debug("Survey generated",
		zap.Int("rows", g.Rows()),
		zap.Int("cols", g.Cols()),
		zap.Float64("spacing", g.Dx()))
	return g, nil
}

// window extracts the run-file window at (x, y), defaulting to the
// survey centre when a coordinate is NaN.
func (a *app) window(g *grid.Grid, x, y float64) (grid.Window, error) {
	ext := g.Extent()
	if math.IsNaN(x) {
		x = 0.5 * (ext.XMin + ext.XMax)
	}
	if math.IsNaN(y) {
		y = 0.5 * (ext.YMin + ext.YMax)
	}
	return g.Window(x, y, a.run.Window)
}

func (a *app) radial(x, y float64) (spectrum.Radial, error) {
	g, err := a.survey()
	if err != nil {
		return spectrum.Radial{}, err
	}
	w, err := a.window(g, x, y)
	if err != nil {
		return spectrum.Radial{}, err
	}
	est, err := a.run.estimator()
	if err != nil {
		return spectrum.Radial{}, err
	}
	s, err := est.Radial(w)
	if err != nil {
		return spectrum.Radial{}, err
	}
	if a.run.KMin > 0 || a.run.KMax > 0 {
		s = s.Band(a.run.KMin, a.run.KMax)
	}
	return s, nil
}

func (a *app) fitOptions() []inversion.Option {
	return []inversion.Option{inversion.WithFixed(a.run.fixed()...)}
}

func (a *app) synthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synth",
		Short: "Generate the synthetic survey and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.survey()
			if err != nil {
				return err
			}
			data := g.Data()
			mean, std := stat.MeanStdDev(data, nil)
			ext := g.Extent()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Nodes\t%d x %d\n", g.Rows(), g.Cols())
			fmt.Fprintf(tw, "Extent\t[%g, %g] x [%g, %g]\n", ext.XMin, ext.XMax, ext.YMin, ext.YMax)
			fmt.Fprintf(tw, "Spacing\t%g\n", g.Dx())
			fmt.Fprintf(tw, "Mean\t%.6g\n", mean)
			fmt.Fprintf(tw, "Std\t%.6g\n", std)
			fmt.Fprintf(tw, "Range\t[%.6g, %.6g]\n", floats.Min(data), floats.Max(data))
			fmt.Fprintf(tw, "Model\t%s (curie %.4g)\n", a.run.Survey.Model.params(), a.run.Survey.Model.params().CurieDepth())
			return tw.Flush()
		},
	}
}

func (a *app) spectrumCmd() *cobra.Command {
	var (
		x, y      float64
		azimuthal bool
	)
	cmd := &cobra.Command{
		Use:   "spectrum",
		Short: "Print the radial (or azimuthal) log power spectrum of one window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if azimuthal {
				return a.printAzimuthal(cmd.OutOrStdout(), x, y)
			}
			s, err := a.radial(x, y)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "k\tlog power\tsigma\tcount\n")
			fmt.Fprintf(tw, "-\t---------\t-----\t-----\n")
			sigma := s.Sigma()
			for i := range s.K {
				fmt.Fprintf(tw, "%.5f\t%.4f\t%.4f\t%d\n", s.K[i], s.Power[i], sigma[i], s.Count[i])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&x, "x", math.NaN(), "window centre x (default survey centre)")
	cmd.Flags().Float64Var(&y, "y", math.NaN(), "window centre y (default survey centre)")
	cmd.Flags().BoolVar(&azimuthal, "azimuthal", false, "print per-sector spectra")
	return cmd
}

func (a *app) printAzimuthal(out io.Writer, x, y float64) error {
	g, err := a.survey()
	if err != nil {
		return err
	}
	w, err := a.window(g, x, y)
	if err != nil {
		return err
	}
	est, err := a.run.estimator()
	if err != nil {
		return err
	}
	az, err := est.Azimuthal(w)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "theta\tbins\tmean log power\n")
	fmt.Fprintf(tw, "-----\t----\t--------------\n")
	for i, theta := range az.Theta {
		sector := az.Sector(i)
		mean := math.NaN()
		if sector.Len() > 0 {
			mean = stat.Mean(sector.Power, nil)
		}
		fmt.Fprintf(tw, "%.1f\t%d\t%.4f\n", theta, sector.Len(), mean)
	}
	return tw.Flush()
}

func (a *app) fitCmd() *cobra.Command {
	var (
		x, y    float64
		tanaka  bool
		ztRange []float64
		z0Range []float64
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the Bouligand spectrum to one window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.radial(x, y)
			if err != nil {
				return err
			}
			reg, err := a.run.registry()
			if err != nil {
				return err
			}
			res, err := inversion.NewFitter(reg, a.fitOptions()...).Fit(s, a.run.Initial.params())
			if err != nil {
				return err
			}
			a.logger.Debug("Fit finished",
				zap.Int("iterations", res.Iterations),
				zap.Int("evaluations", res.Evaluations),
				zap.Stringer("status", res.Status))

			out := cmd.OutOrStdout()
			truth := a.run.Survey.Model.params()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Parameter\tEstimate\tTruth\n")
			fmt.Fprintf(tw, "---------\t--------\t-----\n")
			for _, q := range model.Parameters() {
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\n", q, res.Params.Get(q), truth.Get(q))
			}
			fmt.Fprintf(tw, "curie\t%.4f\t%.4f\n", res.Params.CurieDepth(), truth.CurieDepth())
			fmt.Fprintf(tw, "objective\t%.6g\t\n", res.Objective)
			if err := tw.Flush(); err != nil {
				return err
			}

			if !tanaka {
				return nil
			}
			if len(ztRange) != 2 || len(z0Range) != 2 {
				return errors.New("--zt-range and --z0-range need two values each")
			}
			tr, err := inversion.Tanaka(s,
				inversion.Range{Min: ztRange[0], Max: ztRange[1]},
				inversion.Range{Min: z0Range[0], Max: z0Range[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "tanaka: zt=%.4f±%.4f z0=%.4f±%.4f curie=%.4f±%.4f\n",
				tr.Zt, tr.ZtErr, tr.Z0, tr.Z0Err, tr.Curie, tr.CurieErr)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", math.NaN(), "window centre x (default survey centre)")
	cmd.Flags().Float64Var(&y, "y", math.NaN(), "window centre y (default survey centre)")
	cmd.Flags().BoolVar(&tanaka, "tanaka", false, "also run the centroid method")
	cmd.Flags().Float64SliceVar(&ztRange, "zt-range", []float64{1, 2.5}, "wavenumber band for the top depth")
	cmd.Flags().Float64SliceVar(&z0Range, "z0-range", []float64{0.1, 0.5}, "wavenumber band for the centroid depth")
	return cmd
}

func (a *app) mcmcCmd() *cobra.Command {
	var (
		x, y         float64
		nsim, burnin int
	)
	cmd := &cobra.Command{
		Use:   "mcmc",
		Short: "Sample the posterior of one window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.radial(x, y)
			if err != nil {
				return err
			}
			reg, err := a.run.registry()
			if err != nil {
				return err
			}
			fit, err := inversion.NewFitter(reg, a.fitOptions()...).Fit(s, a.run.Initial.params())
			if err != nil {
				return err
			}
			if nsim <= 0 {
				nsim = a.run.NSim
			}
			if burnin < 0 {
				burnin = a.run.Burnin
			}
			rng := rand.New(rand.NewPCG(a.run.Seed, 0))
			chain, err := inversion.NewSampler(reg, rng, a.fitOptions()...).
				Sample(s, fit.Params, nsim, burnin, a.run.Proposal.params())
			if err != nil {
				return err
			}
			draws := chain.Posterior(burnin)
			sum := draws.Summary()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Parameter\tMean\tStd\tP2.5\tP97.5\n")
			fmt.Fprintf(tw, "---------\t----\t---\t----\t-----\n")
			for _, q := range model.Parameters() {
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", q,
					sum.Mean.Get(q), sum.Std.Get(q), draws.Quantile(q, 0.025), draws.Quantile(q, 0.975))
			}
			fmt.Fprintf(tw, "curie\t%.4f\t%.4f\t\t\n", sum.Curie, sum.CurieStd)
			fmt.Fprintf(tw, "acceptance\t%.3f\t\t\t\n", chain.AcceptanceRate())
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&x, "x", math.NaN(), "window centre x (default survey centre)")
	cmd.Flags().Float64Var(&y, "y", math.NaN(), "window centre y (default survey centre)")
	cmd.Flags().IntVar(&nsim, "nsim", 0, "chain length (overrides the run file)")
	cmd.Flags().IntVar(&burnin, "burnin", -1, "burn-in length (overrides the run file)")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Estimate Curie depth over the centroid lattice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.survey()
			if err != nil {
				return err
			}
			lat, err := g.Centroids(a.run.Window, a.run.Step, a.run.Step)
			if err != nil {
				return err
			}
			est, err := a.run.estimator()
			if err != nil {
				return err
			}
			reg, err := a.run.registry()
			if err != nil {
				return err
			}
			r, err := batch.NewRunner(batch.Config{
				Window:  a.run.Window,
				Workers: a.run.Workers,
				Seed:    a.run.Seed,
				Timeout: a.run.Timeout,
				Initial: a.run.Initial.params(),
				Scale:   a.run.Proposal.params(),
				NSim:    a.run.NSim,
				Burnin:  a.run.Burnin,
				KMin:    a.run.KMin,
				KMax:    a.run.KMax,
			},
				batch.WithLogger(a.logger),
				batch.WithEstimator(est),
				batch.WithRegistry(reg),
				batch.WithFitOptions(a.fitOptions()...),
			)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var res *batch.Result
			switch mode {
			case "fit":
				res, err = r.FitAll(ctx, g, lat)
			case "sample":
				res, err = r.SampleAll(ctx, g, lat)
			case "sensitivity":
				res, err = r.SensitivityAll(ctx, g, lat)
			default:
				return fmt.Errorf("unknown mode %q (fit, sample, sensitivity)", mode)
			}
			if err != nil {
				return err
			}
			return printBatch(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "fit", "fit, sample or sensitivity")
	return cmd
}

func printBatch(out io.Writer, res *batch.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "x\ty\tstatus\tcurie\tstd\n")
	fmt.Fprintf(tw, "-\t-\t------\t-----\t---\n")
	for _, e := range res.Estimates {
		fmt.Fprintf(tw, "%.6g\t%.6g\t%s\t%.4f\t%.4f\n", e.Point.X, e.Point.Y, e.Status, e.Curie, e.CurieStd)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	counts := res.Counts()
	for s := batch.StatusOK; s <= batch.StatusFailed; s++ {
		if n := counts[s]; n > 0 {
			fmt.Fprintf(out, "%s: %d\n", s, n)
		}
	}
	return nil
}
