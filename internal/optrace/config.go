package optrace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Material resolution strategies for catalog-backed materials.
const (
	StrategyConstant          = "constant"            // always use the fallback index
	StrategyCatalog           = "catalog"             // catalog data or fail
	StrategyCatalogOrConstant = "catalog-or-constant" // fallback index when the page is unavailable
)

var configValidate = validator.New()

type Vec3Cfg struct {
	X Real `json:"x" yaml:"x"`
	Y Real `json:"y" yaml:"y"`
	Z Real `json:"z" yaml:"z"`
}

func (v Vec3Cfg) Vector() Vector3 { return Vector3{v.X, v.Y, v.Z} }

// Rotation in degrees for config files.
type Rot3Deg struct {
	X Real `json:"x" yaml:"x"`
	Y Real `json:"y" yaml:"y"`
	Z Real `json:"z" yaml:"z"`
}

func (r Rot3Deg) Radians() Rot3 {
	return Rot3{X: r.X * Degree, Y: r.Y * Degree, Z: r.Z * Degree}
}

type FrameCfg struct {
	Name             string  `json:"name" yaml:"name" validate:"required"`
	Parent           string  `json:"parent,omitempty" yaml:"parent,omitempty"` // empty: root
	Decenter         Vec3Cfg `json:"decenter" yaml:"decenter"`
	TiltDeg          Rot3Deg `json:"tiltDeg" yaml:"tiltDeg"`
	TiltThenDecenter bool    `json:"tiltThenDecenter,omitempty" yaml:"tiltThenDecenter,omitempty"`
}

func (f FrameCfg) Spec() FrameSpec {
	return FrameSpec{
		Name:             f.Name,
		Decenter:         f.Decenter.Vector(),
		Tilt:             f.TiltDeg.Radians(),
		TiltThenDecenter: f.TiltThenDecenter,
	}
}

type ShapeCfg struct {
	Kind          string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=conic asphere"`
	Curvature     Real   `json:"curvature,omitempty" yaml:"curvature,omitempty"`
	ConicConstant Real   `json:"conic,omitempty" yaml:"conic,omitempty"`
	Coefficients  []Real `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
}

// Build returns nil for an empty kind: the surface has no shape.
func (c ShapeCfg) Build() (Shape, error) {
	switch c.Kind {
	case "":
		return nil, nil
	case "conic":
		return NewConic(c.Curvature, c.ConicConstant)
	case "asphere":
		return NewAsphere(c.Curvature, c.ConicConstant, c.Coefficients...)
	}
	return nil, fmt.Errorf("shape kind %q: %w", c.Kind, ErrInvalidConfig)
}

type ApertureCfg struct {
	Kind       string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=circular rectangular"`
	Radius     Real   `json:"radius,omitempty" yaml:"radius,omitempty"`
	HalfWidthX Real   `json:"halfWidthX,omitempty" yaml:"halfWidthX,omitempty"`
	HalfWidthY Real   `json:"halfWidthY,omitempty" yaml:"halfWidthY,omitempty"`
}

// Build returns nil for an empty kind: the aperture is unlimited.
func (c ApertureCfg) Build() (Aperture, error) {
	switch c.Kind {
	case "":
		return nil, nil
	case "circular":
		return NewCircularAperture(c.Radius)
	case "rectangular":
		return NewRectangularAperture(c.HalfWidthX, c.HalfWidthY)
	}
	return nil, fmt.Errorf("aperture kind %q: %w", c.Kind, ErrInvalidConfig)
}

type MaterialCfg struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=constant model catalog"`
	// constant
	N Real `json:"n,omitempty" yaml:"n,omitempty"`
	K Real `json:"k,omitempty" yaml:"k,omitempty" validate:"gte=0"`
	// model
	Nd Real `json:"nd,omitempty" yaml:"nd,omitempty"`
	Vd Real `json:"vd,omitempty" yaml:"vd,omitempty"`
	// catalog
	Shelf         string `json:"shelf,omitempty" yaml:"shelf,omitempty"`
	Book          string `json:"book,omitempty" yaml:"book,omitempty"`
	Page          string `json:"page,omitempty" yaml:"page,omitempty"`
	FallbackIndex Real   `json:"fallbackIndex,omitempty" yaml:"fallbackIndex,omitempty" validate:"gte=0"`
}

// Build resolves a material; fellBack reports that a catalog page was replaced
// by the constant fallback index.
func (c MaterialCfg) Build(strategy string, cat GlassCatalog) (m Material, fellBack bool, err error) {
	switch c.Kind {
	case "constant":
		m, err = NewConstantIndexGlass(c.Name, complex(c.N, c.K))
		return m, false, err
	case "model":
		m, err = NewModelGlass(c.Name, c.Nd, c.Vd)
		return m, false, err
	case "catalog":
	default:
		return nil, false, fmt.Errorf("material %q kind %q: %w", c.Name, c.Kind, ErrInvalidConfig)
	}
	fallback := func() (Material, bool, error) {
		if !(c.FallbackIndex > 0) {
			return nil, false, fmt.Errorf("material %q has no fallbackIndex for strategy %q: %w", c.Name, strategy, ErrInvalidConfig)
		}
		g, err := NewConstantIndexGlass(c.Name+" (fallback)", complex(c.FallbackIndex, 0))
		return g, true, err
	}
	if strategy == StrategyConstant {
		return fallback()
	}
	cm, err := cat.Material(c.Shelf, c.Book, c.Page)
	if err == nil {
		return cm, false, nil
	}
	if strategy == StrategyCatalogOrConstant && errors.Is(err, ErrMaterialUnavailable) {
		return fallback()
	}
	return nil, false, fmt.Errorf("material %q: %w", c.Name, err)
}

type SurfaceCfg struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// SameAs reuses an earlier surface of the same element; Frame, Shape and Aperture are ignored.
	SameAs   string      `json:"sameAs,omitempty" yaml:"sameAs,omitempty"`
	Frame    string      `json:"frame,omitempty" yaml:"frame,omitempty" validate:"required_without=SameAs"`
	Shape    ShapeCfg    `json:"shape" yaml:"shape"`
	Aperture ApertureCfg `json:"aperture" yaml:"aperture"`
	Before   string      `json:"before,omitempty" yaml:"before,omitempty"`
	After    string      `json:"after,omitempty" yaml:"after,omitempty"`
}

type ElementCfg struct {
	Name      string        `json:"name" yaml:"name" validate:"required"`
	Frame     string        `json:"frame,omitempty" yaml:"frame,omitempty"`
	Materials []MaterialCfg `json:"materials,omitempty" yaml:"materials,omitempty" validate:"dive"`
	Surfaces  []SurfaceCfg  `json:"surfaces" yaml:"surfaces" validate:"required,min=1,dive"`
}

type BundleCfg struct {
	Rays      int     `json:"rays,omitempty" yaml:"rays,omitempty" validate:"gte=0"`
	Raster    string  `json:"raster,omitempty" yaml:"raster,omitempty" validate:"omitempty,oneof=rect hex meridional sagittal random"`
	Seed      int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Radius    Real    `json:"radius" yaml:"radius" validate:"gte=0"`
	Start     Vec3Cfg `json:"start" yaml:"start"`
	AngleXDeg Real    `json:"angleXDeg,omitempty" yaml:"angleXDeg,omitempty"`
	AngleYDeg Real    `json:"angleYDeg,omitempty" yaml:"angleYDeg,omitempty"`
}

func (c BundleCfg) raster() Raster {
	switch c.Raster {
	case "rect":
		return RectGrid{}
	case "hex":
		return HexGrid{}
	case "sagittal":
		return SagittalFan{}
	case "random":
		return RandomGrid{Seed: c.Seed}
	default:
		return MeridionalFan{}
	}
}

// Spec converts to a BundleSpec in the given starting medium (nil: vacuum).
func (c BundleCfg) Spec(medium Material) BundleSpec {
	return BundleSpec{
		Radius: c.Radius,
		Start:  c.Start.Vector(),
		AngleX: c.AngleXDeg * Degree,
		AngleY: c.AngleYDeg * Degree,
		Raster: c.raster(),
		Medium: medium,
	}
}

type Config struct {
	RootName         string       `json:"rootName,omitempty" yaml:"rootName,omitempty"`
	MaterialStrategy string       `json:"materialStrategy,omitempty" yaml:"materialStrategy,omitempty" validate:"oneof=constant catalog catalog-or-constant"`
	CatalogPath      string       `json:"catalogPath,omitempty" yaml:"catalogPath,omitempty"`
	Frames           []FrameCfg   `json:"frames" yaml:"frames" validate:"dive"`
	Elements         []ElementCfg `json:"elements" yaml:"elements" validate:"required,min=1,dive"`
	Sequence         Sequence     `json:"sequence" yaml:"sequence" validate:"required,min=1,dive"`
	Bundle           BundleCfg    `json:"bundle" yaml:"bundle"`
	Wavelengths      []Real       `json:"wavelengths,omitempty" yaml:"wavelengths,omitempty" validate:"dive,gt=0"`
	SpotPNG          string       `json:"spotPNG,omitempty" yaml:"spotPNG,omitempty"`
}

// LoadConfig reads a .json, .yaml or .yml file, fills defaults and validates it.
// A relative catalogPath is taken relative to the config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("config %s: unknown extension: %w", path, ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if cfg.CatalogPath != "" && !filepath.IsAbs(cfg.CatalogPath) {
		cfg.CatalogPath = filepath.Join(filepath.Dir(path), cfg.CatalogPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RootName == "" {
		c.RootName = DefaultRootName
	}
	if c.MaterialStrategy == "" {
		c.MaterialStrategy = StrategyCatalog
	}
	if c.Bundle.Rays <= 0 {
		c.Bundle.Rays = DefaultRays
	}
	if c.Bundle.Raster == "" {
		c.Bundle.Raster = "meridional"
	}
	if len(c.Wavelengths) == 0 {
		c.Wavelengths = []Real{StandardWavelength}
	}
}

// Validate checks struct tags; names are checked later by Build.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

type BuildOptions struct {
	Logger  *slog.Logger
	Metrics *TraceMetrics
}

// BuildResult is a ready-to-trace system. Fallbacks lists materials that were
// replaced by their constant fallback index.
type BuildResult struct {
	System    *OpticalSystem
	Sequence  Sequence
	Fallbacks []string
}

// Build constructs the system and checks the sequence against it.
func (c *Config) Build(opts BuildOptions) (*BuildResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sys := NewOpticalSystem(WithRootName(c.RootName), WithLogger(logger), WithMetrics(opts.Metrics))
	for _, f := range c.Frames {
		if _, err := sys.AddLocalCoordinateSystem(f.Spec(), f.Parent); err != nil {
			return nil, err
		}
	}
	frame := func(name string) (*LocalCoordinates, error) {
		if name == "" {
			return sys.Root(), nil
		}
		lc, ok := sys.Coordinates().Lookup(name)
		if !ok {
			return nil, fmt.Errorf("frame %q: %w", name, ErrUnknownReference)
		}
		return lc, nil
	}

	res := &BuildResult{System: sys, Sequence: c.Sequence}
	cat := GlassCatalog{BasePath: c.CatalogPath}
	for _, ec := range c.Elements {
		lc, err := frame(ec.Frame)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", ec.Name, err)
		}
		e, err := NewOpticalElement(lc, ec.Name)
		if err != nil {
			return nil, err
		}
		for _, mc := range ec.Materials {
			m, fellBack, err := mc.Build(c.MaterialStrategy, cat)
			if err != nil {
				return nil, fmt.Errorf("element %q: %w", ec.Name, err)
			}
			if fellBack {
				res.Fallbacks = append(res.Fallbacks, ec.Name+"/"+mc.Name)
				logger.Warn("catalog material replaced by constant index",
					"element", ec.Name,
					"material", mc.Name,
					"index", mc.FallbackIndex,
					"strategy", c.MaterialStrategy,
				)
			}
			if err := e.AddMaterial(mc.Name, m); err != nil {
				return nil, err
			}
		}
		for _, sc := range ec.Surfaces {
			s, err := c.buildSurface(e, sc, frame)
			if err != nil {
				return nil, fmt.Errorf("element %q surface %q: %w", ec.Name, sc.Name, err)
			}
			if err := e.AddSurface(sc.Name, s, MaterialPair{Before: sc.Before, After: sc.After}); err != nil {
				return nil, err
			}
		}
		if err := sys.AddElement(e); err != nil {
			return nil, err
		}
	}
	if err := sys.Validate(c.Sequence); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Config) buildSurface(e *OpticalElement, sc SurfaceCfg, frame func(string) (*LocalCoordinates, error)) (*Surface, error) {
	if sc.SameAs != "" {
		s, ok := e.Surface(sc.SameAs)
		if !ok {
			return nil, fmt.Errorf("sameAs %q: %w", sc.SameAs, ErrUnknownReference)
		}
		return s, nil
	}
	lc, err := frame(sc.Frame)
	if err != nil {
		return nil, err
	}
	shape, err := sc.Shape.Build()
	if err != nil {
		return nil, err
	}
	ap, err := sc.Aperture.Build()
	if err != nil {
		return nil, err
	}
	opts := []SurfaceOption{}
	if shape != nil {
		opts = append(opts, WithShape(shape))
	}
	if ap != nil {
		opts = append(opts, WithAperture(ap))
	}
	return NewSurface(lc, opts...)
}

// Bundles builds one initial bundle per configured wavelength.
func (c *Config) Bundles() ([]*RayBundle, error) {
	spec := c.Bundle.Spec(nil)
	out := make([]*RayBundle, 0, len(c.Wavelengths))
	for _, w := range c.Wavelengths {
		b, err := CollimatedBundle(c.Bundle.Rays, spec, w)
		if err != nil {
			return nil, fmt.Errorf("bundle at %.6g mm: %w", w, err)
		}
		out = append(out, b)
	}
	return out, nil
}
