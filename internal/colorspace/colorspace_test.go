package colorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantRoundTrip(t *testing.T) {
	cases := []XY{
		{X: 0.675, Y: 0.322},
		{X: 0.0, Y: 0.0},
		{X: WideGamutMaxX, Y: WideGamutMaxY},
		{X: 0.3127, Y: 0.3290},
	}

	for _, xy := range cases {
		packed := xy.ToQuant()
		got := FromQuant(packed)
		assert.InDelta(t, xy.X, got.X, 1e-3)
		assert.InDelta(t, xy.Y, got.Y, 1e-3)
	}
}

func TestQuantLayout(t *testing.T) {
	xy := XY{X: 0.675, Y: 0.322}
	b := xy.ToQuant()
	require.Len(t, b, 3)
	back := FromQuant(b)
	assert.InDelta(t, xy.X, back.X, 1e-3)
	assert.InDelta(t, xy.Y, back.Y, 1e-3)
}

func TestCCTToXY(t *testing.T) {
	cases := []struct {
		kelvin int
		x, y   float64
	}{
		{2000, 0.5269, 0.4132},
		{3500, 0.4053, 0.3908},
		{4200, 0.3720, 0.3713},
		{6500, 0.3134, 0.3236},
	}

	for _, c := range cases {
		xy := CCTToXY(float64(c.kelvin))
		assert.InDelta(t, c.x, xy.X, 0.002, "x for %dK", c.kelvin)
		assert.InDelta(t, c.y, xy.Y, 0.002, "y for %dK", c.kelvin)
	}
}

func TestClamps(t *testing.T) {
	assert.Equal(t, uint8(0), ClampU8(0))
	assert.Equal(t, uint8(255), ClampU8(1))
	assert.Equal(t, uint8(128), ClampU8(0.5))

	assert.Equal(t, uint8(1), ClampU8Light(0))
	assert.Equal(t, uint8(254), ClampU8Light(1))
}

func TestGammaRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.01, 0.5, 1} {
		enc := SRGBGamma.Encode(v)
		dec := SRGBGamma.Decode(enc)
		assert.InDelta(t, v, dec, 1e-9)
	}
}

func TestRGBXYYRoundTrip(t *testing.T) {
	xy, brightness := SRGB.RGBToXYY(1, 0, 0)
	assert.Greater(t, brightness, 0.0)
	r, g, b := SRGB.XYToRGB(xy, 1)
	assert.Greater(t, r, g)
	assert.Greater(t, r, b)
}
