package optrace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Droplet(t *testing.T) {
	png := filepath.Join(t.TempDir(), "spot.png")
	metrics := NewTraceMetrics(prometheus.NewRegistry())
	var out bytes.Buffer
	rep, err := Run(context.Background(), filepath.Join("..", "..", "scenes", "droplet.yaml"), RunOptions{
		Metrics: metrics,
		Out:     &out,
		SpotPNG: png,
	})
	require.NoError(t, err)
	require.Len(t, rep.Wavelengths, 2)
	assert.Empty(t, rep.Fallbacks)

	red, blue := rep.Wavelengths[0], rep.Wavelengths[1]
	assert.Equal(t, 0.7e-3, red.Wavelength)
	assert.Equal(t, 0.47e-3, blue.Wavelength)
	for _, wr := range rep.Wavelengths {
		assert.Equal(t, 11, wr.Stats.Alive())
		assert.Equal(t, 11, wr.Spot.Alive)
		assert.Equal(t, 1.0, wr.Transmission)
		assert.InDelta(t, -0.098, wr.Spot.CentroidY, 2e-3)
		require.NotNil(t, wr.Paraxial)
		assert.Equal(t, "stop", wr.Paraxial.StopSurface)
	}
	assert.Greater(t, blue.Spot.CentroidY-red.Spot.CentroidY, 1e-4)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.traces))

	st, err := os.Stat(png)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	table := out.String()
	assert.True(t, strings.HasPrefix(table, "sequence: droplet:stop[stop]"))
	assert.Contains(t, table, "700.00")
	assert.Contains(t, table, "470.00")
	assert.Contains(t, table, "efl[mm]")
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "none.yaml"), RunOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	// water is tabulated from 200 nm
	body := strings.Replace(lensYAML, "bundle:", "wavelengths: [0.0001]\nbundle:", 1)
	body = strings.Replace(body, "{name: crown, kind: model, nd: 1.5168, vd: 64.17}",
		"{name: crown, kind: catalog, shelf: 3d, book: liquids, page: water}", 1)
	body = "catalogPath: " + filepath.Join(mustAbs(t, "testdata"), "catalog") + "\n" + strings.Replace(body, "materialStrategy: constant", "materialStrategy: catalog-or-constant", 1)
	_, err = Run(context.Background(), writeConfig(t, "uv.yaml", body), RunOptions{})
	assert.ErrorIs(t, err, ErrMaterialDomain)
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	a, err := filepath.Abs(p)
	require.NoError(t, err)
	return a
}
