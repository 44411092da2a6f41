package optrace

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSpotPNG(t *testing.T) {
	red := SpotResult{X: []Real{-1, 0, 1}, Y: []Real{0, 0, 0}}
	blue := SpotResult{X: []Real{0}, Y: []Real{1}}
	var buf bytes.Buffer
	require.NoError(t, EncodeSpotPNG(&buf, 64, red, blue))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	// corners stay white
	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
	// x span 2 and y span 1 share one scale: blue sits above the red line
	colored := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r != g || g != b {
				colored++
			}
		}
	}
	assert.Equal(t, 4*9, colored)
	r, _, b, _ = img.At(32, 19).RGBA()
	assert.Greater(t, b, r, "blue point above the centre")
}

func TestEncodeSpotPNG_EmptyAndTooSmall(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSpotPNG(&buf, 16))
	_, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.ErrorIs(t, EncodeSpotPNG(&buf, 4), ErrInvalidConfig)
}

func TestSaveSpotPNG(t *testing.T) {
	p := filepath.Join(t.TempDir(), "spot.png")
	require.NoError(t, SaveSpotPNG(p, 32, SpotResult{X: []Real{0}, Y: []Real{0}}))
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)

	assert.Error(t, SaveSpotPNG(filepath.Join(t.TempDir(), "no", "such", "dir.png"), 32))
}
