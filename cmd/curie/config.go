package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-curie/model"
	"github.com/cwbudde/algo-curie/prior"
	"github.com/cwbudde/algo-curie/spectrum"
	"github.com/cwbudde/algo-curie/taper"
)

// paramsFile is the YAML form of model.Params.
type paramsFile struct {
	Beta float64 `yaml:"beta"`
	Zt   float64 `yaml:"zt"`
	Dz   float64 `yaml:"dz"`
	C    float64 `yaml:"c"`
}

func (p paramsFile) params() model.Params {
	return model.Params{Beta: p.Beta, Zt: p.Zt, Dz: p.Dz, C: p.C}
}

type normalPrior struct {
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

type surveyFile struct {
	Rows    int        `yaml:"rows"`
	Cols    int        `yaml:"cols"`
	Spacing float64    `yaml:"spacing"`
	Seed    uint64     `yaml:"seed"`
	Model   paramsFile `yaml:"model"`
	Upward  float64    `yaml:"upward"`
}

// runFile is the YAML run description accepted by --config.
type runFile struct {
	Survey   surveyFile             `yaml:"survey"`
	Window   float64                `yaml:"window"`
	Step     float64                `yaml:"step"`
	Taper    string                 `yaml:"taper"`
	Scale    float64                `yaml:"scale"`
	KMin     float64                `yaml:"kmin"`
	KMax     float64                `yaml:"kmax"`
	Workers  int                    `yaml:"workers"`
	Seed     uint64                 `yaml:"seed"`
	Timeout  time.Duration          `yaml:"timeout"`
	Initial  paramsFile             `yaml:"initial"`
	Proposal paramsFile             `yaml:"proposal"`
	NSim     int                    `yaml:"nsim"`
	Burnin   int                    `yaml:"burnin"`
	Fixed    []string               `yaml:"fixed"`
	Priors   map[string]normalPrior `yaml:"priors"`
}

func defaultRunFile() runFile {
	return runFile{
		Survey: surveyFile{
			Rows:    129,
			Cols:    129,
			Spacing: 1,
			Seed:    1,
			Model:   paramsFile{Beta: 3, Zt: 1, Dz: 5, C: 10},
		},
		Window:   64,
		Taper:    "hann",
		Scale:    1,
		Seed:     1,
		Initial:  paramsFile{Beta: 3, Zt: 1.5, Dz: 8, C: 8},
		Proposal: paramsFile{Beta: 0.02, Zt: 0.02, Dz: 0.2, C: 0.05},
		NSim:     2000,
		Burnin:   500,
	}
}

// loadRunFile overlays the YAML file at path on the defaults. An empty
// path returns the defaults.
func loadRunFile(path string) (runFile, error) {
	rf := defaultRunFile()
	if path == "" {
		return rf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rf, fmt.Errorf("read run file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return rf, fmt.Errorf("parse run file %s: %w", path, err)
	}
	return rf, rf.validate()
}

func (rf runFile) validate() error {
	var errs []error
	if rf.Survey.Rows < 3 || rf.Survey.Cols < 3 {
		errs = append(errs, fmt.Errorf("survey must be at least 3x3, got %dx%d", rf.Survey.Rows, rf.Survey.Cols))
	}
	if !(rf.Survey.Spacing > 0) {
		errs = append(errs, errors.New("survey spacing must be > 0"))
	}
	if !(rf.Window > 0) {
		errs = append(errs, errors.New("window must be > 0"))
	}
	if _, err := taper.Parse(rf.Taper); err != nil {
		errs = append(errs, err)
	}
	for _, name := range rf.Fixed {
		if _, err := model.ParseParameter(name); err != nil {
			errs = append(errs, err)
		}
	}
	for name, p := range rf.Priors {
		if _, err := model.ParseParameter(name); err != nil {
			errs = append(errs, err)
		}
		if !(p.Sigma > 0) {
			errs = append(errs, fmt.Errorf("prior %s: sigma must be > 0", name))
		}
	}
	return errors.Join(errs...)
}

func (rf runFile) estimator() (*spectrum.Estimator, error) {
	t, err := taper.Parse(rf.Taper)
	if err != nil {
		return nil, err
	}
	return spectrum.NewEstimator(
		spectrum.WithTaper(t),
		spectrum.WithScale(rf.Scale),
		spectrum.WithDemean(),
	), nil
}

func (rf runFile) registry() (*prior.Registry, error) {
	reg := prior.NewRegistry()
	for name, p := range rf.Priors {
		q, err := model.ParseParameter(name)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(q, prior.Normal(p.Mu, p.Sigma)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (rf runFile) fixed() []model.Parameter {
	var out []model.Parameter
	for _, name := range rf.Fixed {
		if q, err := model.ParseParameter(name); err == nil {
			out = append(out, q)
		}
	}
	return out
}
