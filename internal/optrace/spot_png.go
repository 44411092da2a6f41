package optrace

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
)

// spotColors cycles per spot; the first two read as red and blue.
var spotColors = []color.NRGBA{
	{R: 0xd0, G: 0x20, B: 0x20, A: 0xff},
	{R: 0x20, G: 0x40, B: 0xd0, A: 0xff},
	{R: 0x20, G: 0xa0, B: 0x40, A: 0xff},
	{R: 0xc0, G: 0x80, B: 0x10, A: 0xff},
	{R: 0x80, G: 0x20, B: 0xa0, A: 0xff},
}

// EncodeSpotPNG draws spots as a size×size diagram sharing one square scale.
// Up is +y.
func EncodeSpotPNG(w io.Writer, size int, spots ...SpotResult) error {
	if size < 8 {
		return fmt.Errorf("spot image size %d too small: %w", size, ErrInvalidConfig)
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range spots {
		for i := range s.X {
			minX, maxX = math.Min(minX, s.X[i]), math.Max(maxX, s.X[i])
			minY, maxY = math.Min(minY, s.Y[i]), math.Max(maxY, s.Y[i])
		}
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xff // white, opaque
	}
	if isFinite(minX) {
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		span := math.Max(maxX-minX, maxY-minY)
		if span == 0 {
			span = 1e-6 // single point: any scale
		}
		scale := Real(size-1) * (1 - 2*SpotPNGMargin) / span
		half := Real(size-1) / 2
		for k, s := range spots {
			c := spotColors[k%len(spotColors)]
			for i := range s.X {
				px := int(math.Round(half + (s.X[i]-cx)*scale))
				py := int(math.Round(half - (s.Y[i]-cy)*scale))
				dot(img, px, py, c)
			}
		}
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// dot paints a 3×3 marker, clipped to the image.
func dot(img *image.NRGBA, x, y int, c color.NRGBA) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (image.Point{X: x + dx, Y: y + dy}).In(img.Rect) {
				img.SetNRGBA(x+dx, y+dy, c)
			}
		}
	}
}

// SaveSpotPNG writes EncodeSpotPNG output to a file.
func SaveSpotPNG(path string, size int, spots ...SpotResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeSpotPNG(f, size, spots...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
