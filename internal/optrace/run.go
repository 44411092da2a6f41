package optrace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

type RunOptions struct {
	Logger  *slog.Logger
	Metrics *TraceMetrics
	// Out receives the spot table; nil discards it.
	Out io.Writer
	// SpotPNG overrides the config's spot diagram path.
	SpotPNG string
}

// WavelengthReport summarises one traced wavelength.
type WavelengthReport struct {
	Wavelength   Real
	Spot         SpotResult
	Transmission Real
	Stats        PathStats
	// Paraxial is nil when the sequence has no stop step.
	Paraxial *ParaxialResult
}

type Report struct {
	Sequence    string
	Fallbacks   []string
	Wavelengths []WavelengthReport
	Elapsed     time.Duration
}

// Run loads a config, traces every configured wavelength and reports the spots.
func Run(ctx context.Context, cfgPath string, opts RunOptions) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded",
		"path", cfgPath,
		"elements", len(cfg.Elements),
		"steps", cfg.Sequence.Len(),
		"wavelengths", len(cfg.Wavelengths),
	)

	built, err := cfg.Build(BuildOptions{Logger: logger, Metrics: opts.Metrics})
	if err != nil {
		return nil, err
	}
	bundles, err := cfg.Bundles()
	if err != nil {
		return nil, err
	}
	an, err := NewAnalysis(built.System, built.Sequence, WithAnalysisLogger(logger))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	paths, err := an.TraceWavelengths(ctx, bundles)
	if err != nil {
		return nil, err
	}
	rep := &Report{Sequence: built.Sequence.String(), Fallbacks: built.Fallbacks}
	spots := make([]SpotResult, 0, len(paths))
	for _, p := range paths {
		spot, err := an.Spot(p)
		if err != nil {
			return nil, err
		}
		spots = append(spots, spot)
		wr := WavelengthReport{
			Wavelength:   p.Initial.Wavelength,
			Spot:         spot,
			Transmission: Transmission(p),
			Stats:        p.Stats(),
		}
		if built.Sequence.HasStop() {
			if wr.Paraxial, err = built.System.Paraxial(built.Sequence, wr.Wavelength); err != nil {
				return nil, err
			}
		}
		rep.Wavelengths = append(rep.Wavelengths, wr)
	}
	rep.Elapsed = time.Since(start)
	logger.Info("run done", "wavelengths", len(paths), "elapsed", rep.Elapsed)

	png := cfg.SpotPNG
	if opts.SpotPNG != "" {
		png = opts.SpotPNG
	}
	if png != "" {
		if err := SaveSpotPNG(png, SpotPNGSize, spots...); err != nil {
			return nil, err
		}
		logger.Info("spot diagram saved", "path", png)
	}
	rep.WriteTable(out)
	return rep, nil
}

// WriteTable prints one line per wavelength; lengths in µm.
func (r *Report) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "sequence: %s\n", r.Sequence)
	for _, f := range r.Fallbacks {
		fmt.Fprintf(w, "fallback material: %s\n", f)
	}
	fmt.Fprintf(w, "%12s %8s %8s %12s %12s %12s %12s\n", "lambda[nm]", "alive", "trans", "cx[um]", "cy[um]", "rms[um]", "efl[mm]")
	for _, wr := range r.Wavelengths {
		efl := "-"
		if wr.Paraxial != nil {
			efl = fmt.Sprintf("%.4f", wr.Paraxial.EffectiveFocalLength)
		}
		fmt.Fprintf(w, "%12.2f %8d %8.3f %12.4f %12.4f %12.4f %12s\n",
			wr.Wavelength*1e6,
			wr.Stats.Alive(),
			wr.Transmission,
			wr.Spot.CentroidX*1e3,
			wr.Spot.CentroidY*1e3,
			wr.Spot.RMS*1e3,
			efl,
		)
	}
}
