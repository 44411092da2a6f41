package optrace

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// catalogPage mirrors one refractiveindex.info material page.
type catalogPage struct {
	References string         `yaml:"REFERENCES"`
	Comments   string         `yaml:"COMMENTS"`
	Data       []catalogEntry `yaml:"DATA"`
}

type catalogEntry struct {
	Type         string `yaml:"type"`
	Range        string `yaml:"range"`
	WaveRange    string `yaml:"wavelength_range"`
	Coefficients string `yaml:"coefficients"`
	Data         string `yaml:"data"`
}

type dispersionKind uint8

const (
	sellmeier  dispersionKind = iota + 1 // formula 1
	sellmeier2                           // formula 2
	polynomial                           // formula 3
	cauchy                               // formula 5
	tabulated
)

// dispersion is one DATA entry; wavelengths in µm.
type dispersion struct {
	kind     dispersionKind
	coeffs   []Real
	lambda   []Real
	n, k     []Real // tabulated; nil when the entry does not carry the column
	min, max Real
}

func (d *dispersion) covers(um Real) bool { return um >= d.min && um <= d.max }

func (d *dispersion) realIndex(um Real) Real {
	c := d.coeffs
	l2 := um * um
	switch d.kind {
	case sellmeier:
		n2 := 1 + c[0]
		for i := 1; i+1 < len(c); i += 2 {
			n2 += c[i] * l2 / (l2 - c[i+1]*c[i+1])
		}
		return math.Sqrt(n2)
	case sellmeier2:
		n2 := 1 + c[0]
		for i := 1; i+1 < len(c); i += 2 {
			n2 += c[i] * l2 / (l2 - c[i+1])
		}
		return math.Sqrt(n2)
	case polynomial:
		n2 := c[0]
		for i := 1; i+1 < len(c); i += 2 {
			n2 += c[i] * math.Pow(um, c[i+1])
		}
		return math.Sqrt(n2)
	case cauchy:
		n := c[0]
		for i := 1; i+1 < len(c); i += 2 {
			n += c[i] * math.Pow(um, c[i+1])
		}
		return n
	default:
		return interp(d.lambda, d.n, um)
	}
}

// interp is piecewise linear on sorted xs; callers check the range first.
func interp(xs, ys []Real, x Real) Real {
	j := sort.SearchFloat64s(xs, x)
	if j <= 0 {
		return ys[0]
	}
	if j >= len(xs) {
		return ys[len(ys)-1]
	}
	x0, x1 := xs[j-1], xs[j]
	f := (x - x0) / (x1 - x0)
	return ys[j-1] + f*(ys[j]-ys[j-1])
}

// CatalogMaterial is an isotropic material backed by tabulated or formula data.
// Index fails with ErrMaterialDomain outside the data's wavelength range.
type CatalogMaterial struct {
	name     string
	real     []*dispersion
	extinct  []*dispersion
	min, max Real // µm, hull of the n entries; gaps between them stay invalid
}

func (m *CatalogMaterial) Name() string { return m.name }

// Range returns the lowest and highest covered vacuum wavelengths in mm. Pages
// whose entries leave a gap are not valid inside it; use Covers.
func (m *CatalogMaterial) Range() (Real, Real) { return m.min * 1e-3, m.max * 1e-3 }

// Covers reports whether Index succeeds at wavelength (mm).
func (m *CatalogMaterial) Covers(wavelength Real) bool {
	um := wavelength * 1e3
	for _, d := range m.real {
		if d.covers(um) {
			return true
		}
	}
	return false
}

func (m *CatalogMaterial) Index(_ *RayBundle, wavelength Real) (complex128, error) {
	um := wavelength * 1e3
	for _, d := range m.real {
		if !d.covers(um) {
			continue
		}
		n := d.realIndex(um)
		var k Real
		for _, e := range m.extinct {
			if e.covers(um) {
				k = interp(e.lambda, e.k, um)
				break
			}
		}
		return complex(n, k), nil
	}
	return 0, fmt.Errorf("material %q at %.6g µm (data within %.6g..%.6g µm): %w", m.name, um, m.min, m.max, ErrMaterialDomain)
}

func (m *CatalogMaterial) Refract(in RefractInput) RefractOutput { return isotropicLaw(in) }
func (*CatalogMaterial) isMaterial()                             {}

// ParseCatalogPage reads a refractiveindex.info YAML page.
func ParseCatalogPage(name string, data []byte) (*CatalogMaterial, error) {
	var page catalogPage
	if err := yaml.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("catalog page %q: %w", name, err)
	}
	if len(page.Data) == 0 {
		return nil, fmt.Errorf("catalog page %q has no DATA entries: %w", name, ErrInvalidConfig)
	}
	m := &CatalogMaterial{name: name, min: math.Inf(1), max: math.Inf(-1)}
	for i, e := range page.Data {
		d, err := parseEntry(e)
		if err != nil {
			return nil, fmt.Errorf("catalog page %q entry %d: %w", name, i, err)
		}
		if d.kind != tabulated || d.n != nil {
			m.real = append(m.real, d)
			m.min = math.Min(m.min, d.min)
			m.max = math.Max(m.max, d.max)
		}
		if d.k != nil {
			m.extinct = append(m.extinct, d)
		}
	}
	if len(m.real) == 0 {
		return nil, fmt.Errorf("catalog page %q has no refractive index data: %w", name, ErrInvalidConfig)
	}
	return m, nil
}

func parseEntry(e catalogEntry) (*dispersion, error) {
	typ := strings.TrimSpace(e.Type)
	d := &dispersion{}
	switch typ {
	case "formula 1":
		d.kind = sellmeier
	case "formula 2":
		d.kind = sellmeier2
	case "formula 3":
		d.kind = polynomial
	case "formula 5":
		d.kind = cauchy
	case "tabulated n", "tabulated k", "tabulated nk":
		d.kind = tabulated
		return d, parseTable(d, typ, e.Data)
	default:
		return nil, fmt.Errorf("unsupported entry type %q: %w", typ, ErrInvalidConfig)
	}
	coeffs, err := parseFloats(e.Coefficients)
	if err != nil {
		return nil, err
	}
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%s without coefficients: %w", typ, ErrInvalidConfig)
	}
	d.coeffs = coeffs
	rng := e.WaveRange
	if rng == "" {
		rng = e.Range
	}
	lim, err := parseFloats(rng)
	if err != nil {
		return nil, err
	}
	if len(lim) != 2 || !(lim[0] < lim[1]) {
		return nil, fmt.Errorf("%s needs a wavelength range, got %q: %w", typ, rng, ErrInvalidConfig)
	}
	d.min, d.max = lim[0], lim[1]
	return d, nil
}

func parseTable(d *dispersion, typ, data string) error {
	cols := 2
	if typ == "tabulated nk" {
		cols = 3
	}
	for ln, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		vals, err := parseFloats(line)
		if err != nil {
			return err
		}
		if len(vals) != cols {
			return fmt.Errorf("%s line %d has %d columns, want %d: %w", typ, ln+1, len(vals), cols, ErrInvalidConfig)
		}
		if n := len(d.lambda); n > 0 && vals[0] <= d.lambda[n-1] {
			return fmt.Errorf("%s line %d: wavelengths must increase: %w", typ, ln+1, ErrInvalidConfig)
		}
		d.lambda = append(d.lambda, vals[0])
		switch typ {
		case "tabulated n":
			d.n = append(d.n, vals[1])
		case "tabulated k":
			d.k = append(d.k, vals[1])
		default:
			d.n = append(d.n, vals[1])
			d.k = append(d.k, vals[2])
		}
	}
	if len(d.lambda) == 0 {
		return fmt.Errorf("%s without data: %w", typ, ErrInvalidConfig)
	}
	d.min, d.max = d.lambda[0], d.lambda[len(d.lambda)-1]
	return nil
}

func parseFloats(s string) ([]Real, error) {
	fields := strings.Fields(s)
	out := make([]Real, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", f, ErrInvalidConfig)
		}
		out = append(out, v)
	}
	return out, nil
}

// GlassCatalog reads pages laid out as <BasePath>/<shelf>/<book>/<page>.yml.
type GlassCatalog struct {
	BasePath string
}

// Material loads one page. A missing file is ErrMaterialUnavailable so callers can
// pick a fallback explicitly.
func (c GlassCatalog) Material(shelf, book, page string) (*CatalogMaterial, error) {
	path := filepath.Join(c.BasePath, shelf, book, page+".yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMaterialUnavailable)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMaterialUnavailable, err)
	}
	return ParseCatalogPage(fmt.Sprintf("%s/%s/%s", shelf, book, page), data)
}
