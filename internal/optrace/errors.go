package optrace

import "errors"

// Configuration errors are fatal and reported before any ray is traced.
// Per-ray failures are never errors; see RayStatus.
var (
	// ErrDuplicateName is returned when a frame, element, surface or material name is taken.
	ErrDuplicateName = errors.New("optrace: duplicate name")

	// ErrCyclicGraph is returned when reparenting a frame would create a cycle.
	ErrCyclicGraph = errors.New("optrace: coordinate graph would become cyclic")

	// ErrUnknownReference is returned when a name does not resolve.
	ErrUnknownReference = errors.New("optrace: unknown reference")

	// ErrMaterialDomain is returned when a wavelength is outside a material's valid range.
	ErrMaterialDomain = errors.New("optrace: wavelength outside material range")

	// ErrMaterialUnavailable is returned when catalog data cannot be loaded.
	ErrMaterialUnavailable = errors.New("optrace: material data unavailable")

	// ErrInvalidConfig is returned for malformed parameters.
	ErrInvalidConfig = errors.New("optrace: invalid configuration")
)
