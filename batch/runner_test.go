package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/algo-curie/grid"
	"github.com/cwbudde/algo-curie/inversion"
	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/spectrum"
	"github.com/cwbudde/algo-curie/synth"
)

var truth = model.Params{Beta: 3, Zt: 1, Dz: 5, C: 10}

func syntheticGrid(t *testing.T, n int) *grid.Grid {
	t.Helper()
	g, err := synth.Field(n, n, 1, truth, rand.New(rand.NewPCG(17, uint64(n))))
	require.NoError(t, err)
	return g
}

// withFlatCorner overwrites nodes [0, size]×[0, size] with a constant.
func withFlatCorner(t *testing.T, g *grid.Grid, size int) *grid.Grid {
	t.Helper()
	data := g.Data()
	for r := 0; r <= size; r++ {
		for c := 0; c <= size; c++ {
			data[r*g.Cols()+c] = 5
		}
	}
	out, err := grid.New(data, g.Rows(), g.Cols(), g.Extent())
	require.NoError(t, err)
	return out
}

func baseConfig() Config {
	return Config{
		Window:  32,
		Workers: 4,
		Seed:    1,
		Initial: truth,
		Scale:   model.Params{Beta: 0.01, Zt: 0.01, Dz: 0.1, C: 0.01},
		NSim:    3,
	}
}

func TestFitAllFlagsFlatWindowOnly(t *testing.T) {
	g := withFlatCorner(t, syntheticGrid(t, 97), 32)
	lat, err := g.Centroids(32, 32, 32)
	require.NoError(t, err)
	require.Equal(t, 9, lat.Len())

	core, logs := observer.New(zap.DebugLevel)
	r, err := NewRunner(baseConfig(), WithLogger(zap.New(core)), WithFitOptions(inversion.WithFixed(model.Beta)))
	require.NoError(t, err)

	res, err := r.FitAll(context.Background(), g, lat)
	require.NoError(t, err)
	require.Len(t, res.Estimates, 9)

	flat := res.Estimates[0]
	assert.Equal(t, grid.Point{X: 16, Y: 16}, flat.Point)
	assert.Equal(t, StatusEmptyBin, flat.Status)
	require.ErrorIs(t, flat.Err, spectrum.ErrEmptyBin)

	for i, e := range res.Estimates[1:] {
		require.Equal(t, StatusOK, e.Status, "centroid %d: %v", i+1, e.Err)
		assert.NoError(t, e.Err)
		assert.Positive(t, e.Params.Zt)
		assert.Positive(t, e.Params.Dz)
		assert.Equal(t, 1, e.Samples)
		assert.InDelta(t, e.Params.CurieDepth(), e.Curie, 1e-12)
	}
	assert.Equal(t, map[Status]int{StatusOK: 8, StatusEmptyBin: 1}, res.Counts())

	maps := res.Maps()
	rows, cols := maps.Curie.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.True(t, math.IsNaN(maps.Curie.At(0, 0)))
	assert.True(t, math.IsNaN(maps.Zt.At(0, 0)))
	assert.False(t, math.IsNaN(maps.Curie.At(2, 2)))
	assert.Equal(t, res.Estimates[lat.Index(1, 2)].Params.Dz, maps.Dz.At(1, 2))

	assert.Equal(t, 1, logs.FilterMessage("Centroid failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Batch finished").Len())
}

func TestSensitivityAllIndependentOfWorkers(t *testing.T) {
	g := syntheticGrid(t, 65)
	lat, err := g.Centroids(32, 32, 32)
	require.NoError(t, err)
	require.Equal(t, 4, lat.Len())

	run := func(workers int) *Result {
		cfg := baseConfig()
		cfg.Workers = workers
		r, err := NewRunner(cfg, WithFitOptions(inversion.WithFixed(model.Beta)))
		require.NoError(t, err)
		res, err := r.SensitivityAll(context.Background(), g, lat)
		require.NoError(t, err)
		return res
	}

	serial, parallel := run(1), run(4)
	for _, e := range serial.Estimates {
		require.Equal(t, StatusOK, e.Status, "%v", e.Err)
		assert.Positive(t, e.Samples)
	}
	opts := cmp.Options{cmpopts.IgnoreFields(Estimate{}, "Err"), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(serial.Estimates, parallel.Estimates, opts); diff != "" {
		t.Errorf("estimates differ between 1 and 4 workers (-serial +parallel):\n%s", diff)
	}
}

func TestSampleAll(t *testing.T) {
	g := syntheticGrid(t, 65)
	lat, err := g.Centroids(32, 32, 32)
	require.NoError(t, err)

	cfg := baseConfig()
	cfg.NSim, cfg.Burnin = 300, 100
	r, err := NewRunner(cfg, WithFitOptions(inversion.WithFixed(model.Beta)))
	require.NoError(t, err)

	res, err := r.SampleAll(context.Background(), g, lat)
	require.NoError(t, err)
	for i, e := range res.Estimates {
		require.Equal(t, StatusOK, e.Status, "centroid %d: %v", i, e.Err)
		assert.Equal(t, 200, e.Samples)
		assert.Equal(t, truth.Beta, e.Params.Beta)
		assert.Zero(t, e.Std.Beta)
		assert.GreaterOrEqual(t, e.Acceptance, 0.0)
		assert.LessOrEqual(t, e.Acceptance, 1.0)
		assert.False(t, math.IsNaN(e.CurieStd))
	}

	cfg.Burnin = cfg.NSim
	r, err = NewRunner(cfg)
	require.NoError(t, err)
	_, err = r.SampleAll(context.Background(), g, lat)
	require.ErrorIs(t, err, errConfig)
}

func TestRunCanceled(t *testing.T) {
	g := syntheticGrid(t, 65)
	lat, err := g.Centroids(32, 16, 16)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewRunner(baseConfig())
	require.NoError(t, err)

	res, err := r.FitAll(ctx, g, lat)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Estimates, lat.Len())
	for _, e := range res.Estimates {
		assert.Equal(t, StatusCanceled, e.Status)
	}
}

func TestRunTimeout(t *testing.T) {
	g := syntheticGrid(t, 65)
	lat, err := g.Centroids(32, 32, 32)
	require.NoError(t, err)

	cfg := baseConfig()
	cfg.Timeout = time.Nanosecond
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	res, err := r.FitAll(context.Background(), g, lat)
	require.NoError(t, err)
	for _, e := range res.Estimates {
		assert.Equal(t, StatusCanceled, e.Status)
		require.ErrorIs(t, e.Err, context.DeadlineExceeded)
	}
}

func TestRunOutOfBoundsAndEmptyBand(t *testing.T) {
	g := syntheticGrid(t, 65)
	lat := grid.Lattice{
		Points: []grid.Point{{X: 1, Y: 1}, {X: 32, Y: 32}},
		Rows:   1,
		Cols:   2,
		Window: 32,
	}

	cfg := baseConfig()
	cfg.KMin = 100
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	res, err := r.FitAll(context.Background(), g, lat)
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfBounds, res.Estimates[0].Status)
	assert.Equal(t, StatusEmptyBin, res.Estimates[1].Status)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(Config{})
	require.ErrorIs(t, err, errConfig)
	_, err = NewRunner(Config{Window: 10, NSim: -1})
	require.ErrorIs(t, err, errConfig)

	r, err := NewRunner(Config{Window: 10})
	require.NoError(t, err)
	assert.Positive(t, r.Config().Workers)

	_, err = r.SensitivityAll(context.Background(), syntheticGrid(t, 33), grid.Lattice{})
	require.ErrorIs(t, err, errConfig)
	_, err = r.FitAll(context.Background(), nil, grid.Lattice{})
	require.ErrorIs(t, err, errConfig)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusOK},
		{fmt.Errorf("wrap: %w", grid.ErrOutOfBounds), StatusOutOfBounds},
		{fmt.Errorf("wrap: %w", spectrum.ErrEmptyBin), StatusEmptyBin},
		{fmt.Errorf("wrap: %w", inversion.ErrConvergence), StatusNotConverged},
		{fmt.Errorf("wrap: %w", model.ErrInvalidParameter), StatusInvalid},
		{grid.ErrInvalidWindow, StatusInvalid},
		{context.DeadlineExceeded, StatusCanceled},
		{errors.New("boom"), StatusFailed},
	}
	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, statusOf(tc.err))
		})
	}
	assert.Equal(t, "unknown", Status(42).String())
}
