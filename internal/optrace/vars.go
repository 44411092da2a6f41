package optrace

var (
	// Compile time checks for the closed shape, aperture, material and raster sets
	_ Shape    = (*Conic)(nil)
	_ Shape    = (*Asphere)(nil)
	_ Aperture = (*CircularAperture)(nil)
	_ Aperture = (*RectangularAperture)(nil)
	_ Material = (*ConstantIndexGlass)(nil)
	_ Material = (*ModelGlass)(nil)
	_ Material = (*CatalogMaterial)(nil)
	_ Raster   = RectGrid{}
	_ Raster   = HexGrid{}
	_ Raster   = MeridionalFan{}
	_ Raster   = SagittalFan{}
	_ Raster   = RandomGrid{}
)
