package optrace

import (
	"fmt"
	"math"
)

// Material exposes a complex refractive index and the law applied at an interface
// into (or, for mirrors, back inside) the material.
type Material interface {
	Name() string
	// Index returns n + iκ at a vacuum wavelength; the bundle gives context and may be nil.
	Index(b *RayBundle, wavelength Real) (complex128, error)
	Refract(in RefractInput) RefractOutput
	isMaterial()
}

// RefractInput is expressed in the surface's local frame.
type RefractInput struct {
	K, E       CVec3s
	Normal     Vec3s
	Status     []RayStatus
	Wavelength Real
	// IndexBefore is informational for isotropic media: k already carries it.
	IndexBefore, IndexAfter complex128
	Mirror                  bool
}

type RefractOutput struct {
	K, E   CVec3s
	Status []RayStatus
}

// ConstantIndexGlass accepts any wavelength.
type ConstantIndexGlass struct {
	name string
	N    complex128
}

func NewConstantIndexGlass(name string, n complex128) (*ConstantIndexGlass, error) {
	if !(real(n) > 0) || !isFiniteC(n) || imag(n) < 0 {
		return nil, fmt.Errorf("material %q: index must have real part > 0 and imaginary part ≥ 0, got %v: %w", name, n, ErrInvalidConfig)
	}
	return &ConstantIndexGlass{name: name, N: n}, nil
}

// Vacuum is the background medium used where no material is named.
func Vacuum() *ConstantIndexGlass { return &ConstantIndexGlass{name: "vacuum", N: VacuumIndex} }

func (m *ConstantIndexGlass) Name() string { return m.name }
func (m *ConstantIndexGlass) Index(_ *RayBundle, _ Real) (complex128, error) {
	return m.N, nil
}
func (m *ConstantIndexGlass) Refract(in RefractInput) RefractOutput { return isotropicLaw(in) }
func (*ConstantIndexGlass) isMaterial()                             {}

// ModelGlass derives a Cauchy dispersion n(λ) = A + B/λ² from nd and the Abbe number vd.
type ModelGlass struct {
	name   string
	Nd, Vd Real
	a, b   Real // λ in µm
}

// Fraunhofer lines in µm.
const (
	lineD = 0.5875618
	lineF = 0.4861327
	lineC = 0.6562725
)

func NewModelGlass(name string, nd, vd Real) (*ModelGlass, error) {
	if !(nd >= 1) || !(vd > 0) || !isFinite(nd) || !isFinite(vd) {
		return nil, fmt.Errorf("model glass %q: need nd ≥ 1 and vd > 0, got nd=%.6g vd=%.6g: %w", name, nd, vd, ErrInvalidConfig)
	}
	dFC := (nd - 1) / vd
	b := dFC / (1/(lineF*lineF) - 1/(lineC*lineC))
	a := nd - b/(lineD*lineD)
	return &ModelGlass{name: name, Nd: nd, Vd: vd, a: a, b: b}, nil
}

func (m *ModelGlass) Name() string { return m.name }

func (m *ModelGlass) Index(_ *RayBundle, wavelength Real) (complex128, error) {
	if !(wavelength > 0) {
		return 0, fmt.Errorf("model glass %q at %.6g mm: %w", m.name, wavelength, ErrMaterialDomain)
	}
	um := wavelength * 1e3
	return complex(m.a+m.b/(um*um), 0), nil
}

func (m *ModelGlass) Refract(in RefractInput) RefractOutput { return isotropicLaw(in) }
func (*ModelGlass) isMaterial()                             {}

// indexOf resolves nil to vacuum.
func indexOf(m Material, b *RayBundle, wavelength Real) (complex128, error) {
	if m == nil {
		return VacuumIndex, nil
	}
	n, err := m.Index(b, wavelength)
	if err != nil {
		return 0, err
	}
	if !isFiniteC(n) || math.IsNaN(real(n)) || real(n) <= 0 {
		return 0, fmt.Errorf("material %q gave index %v at %.6g mm: %w", m.Name(), n, wavelength, ErrMaterialDomain)
	}
	return n, nil
}
