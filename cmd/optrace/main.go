package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lukaszgryglicki/optrace/internal/optrace"
)

var (
	logLevel   string
	cpuProfile string

	spotPNG      string
	printMetrics bool

	catalogPath string
	wavelengths []float64
)

var rootCmd = &cobra.Command{
	Use:           "optrace",
	Short:         "Sequential optical raytracer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var traceCmd = &cobra.Command{
	Use:   "trace CONFIG",
	Short: "Trace every configured wavelength and print spot statistics",
	Long: `Load a .json or .yaml system description, trace the configured ray
bundle through the sequence once per wavelength and print the spot
centroid and RMS radius on the last surface.

Examples:
  optrace trace scenes/droplet.yaml
  optrace trace scenes/droplet.yaml --spot-png spot.png --metrics`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

var indexCmd = &cobra.Command{
	Use:   "index SHELF BOOK PAGE",
	Short: "Print refractive indices from a refractiveindex.info catalog page",
	Args:  cobra.ExactArgs(3),
	RunE:  runIndex,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "",
		"write a CPU profile to this file")

	traceCmd.Flags().StringVar(&spotPNG, "spot-png", "",
		"write the spot diagram to this PNG (overrides the config)")
	traceCmd.Flags().BoolVar(&printMetrics, "metrics", false,
		"print trace counters after the run")

	indexCmd.Flags().StringVar(&catalogPath, "catalog", "refractiveindex.info-database/database",
		"catalog base directory")
	indexCmd.Flags().Float64SliceVar(&wavelengths, "nm", []float64{486.1327, 587.5618, 656.2725},
		"vacuum wavelengths in nm")

	rootCmd.AddCommand(traceCmd, indexCmd)
}

func newLogger() (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("--log-level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func withProfile(fn func() error) error {
	if cpuProfile == "" {
		return fn()
	}
	f, err := os.Create(cpuProfile)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	defer func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}()
	return fn()
}

func runTrace(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	metrics := optrace.NewTraceMetrics(reg)
	return withProfile(func() error {
		_, err := optrace.Run(cmd.Context(), args[0], optrace.RunOptions{
			Logger:  logger,
			Metrics: metrics,
			Out:     cmd.OutOrStdout(),
			SpotPNG: spotPNG,
		})
		if err != nil {
			return err
		}
		if printMetrics {
			return writeMetrics(cmd, reg)
		}
		return nil
	})
}

func writeMetrics(cmd *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(out, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	m, err := optrace.GlassCatalog{BasePath: catalogPath}.Material(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	lo, hi := m.Range()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s data within %.1f..%.1f nm\n", m.Name(), lo*1e6, hi*1e6)
	for _, nm := range wavelengths {
		n, err := m.Index(nil, nm*1e-6)
		if err != nil {
			fmt.Fprintf(out, "%10.4f nm  %v\n", nm, err)
			continue
		}
		fmt.Fprintf(out, "%10.4f nm  n=%.6f k=%.3g\n", nm, real(n), imag(n))
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
