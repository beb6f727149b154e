package codec

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHueZCLCompositeEncode(t *testing.T) {
	red := GradientColorXY{0x11, 0x22, 0x33}

	u := (&HueZigbeeUpdate{}).
		WithOnOff(true).
		WithBrightness(0x20).
		WithGradientColors(GradientStyleLinear, []GradientColorXY{red, red}).
		WithGradientParams(0x38, 0x00)

	got := EncodeHueZCL(u)

	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "4301", hex.EncodeToString(got[0:2]))
	assert.Equal(t, byte(0x01), got[2])
	assert.Equal(t, byte(0x20), got[3])

	tail := got[len(got)-2:]
	assert.Equal(t, []byte{0x38, 0x00}, tail)
}

func TestHueZCLRoundTrip(t *testing.T) {
	mirek := uint16(300)
	red := GradientColorXY{0x11, 0x22, 0x33}

	u := (&HueZigbeeUpdate{}).
		WithOnOff(true).
		WithBrightness(0xAB).
		WithColorMirek(mirek).
		WithFadeSpeed(500).
		WithEffectType(EffectTypeCandle).
		WithGradientColors(GradientStyleMirrored, []GradientColorXY{red}).
		WithEffectSpeed(0x42).
		WithGradientParams(0x08, 0x01)

	encoded := EncodeHueZCL(u)
	decoded, err := DecodeHueZCL(encoded)
	require.NoError(t, err)

	require.NotNil(t, decoded.OnOff)
	assert.True(t, *decoded.OnOff)
	require.NotNil(t, decoded.Brightness)
	assert.Equal(t, uint8(0xAB), *decoded.Brightness)
	require.NotNil(t, decoded.ColorMirek)
	assert.Equal(t, mirek, *decoded.ColorMirek)
	require.NotNil(t, decoded.FadeSpeed)
	assert.Equal(t, uint16(500), *decoded.FadeSpeed)
	require.NotNil(t, decoded.EffectType)
	assert.Equal(t, EffectTypeCandle, *decoded.EffectType)
	require.NotNil(t, decoded.EffectSpeed)
	assert.Equal(t, uint8(0x42), *decoded.EffectSpeed)
	require.NotNil(t, decoded.GradientParams)
	assert.Equal(t, GradientParams{Scale: 0x08, Offset: 0x01}, *decoded.GradientParams)
	require.Len(t, decoded.GradientColors, 1)
	assert.Equal(t, red, decoded.GradientColors[0])
	assert.Equal(t, GradientStyleMirrored, decoded.GradientStyle)
}

func TestHueZCLUnknownFlagsRejected(t *testing.T) {
	buf := []byte{0x00, 0x20} // bit 13, not a known flag
	_, err := DecodeHueZCL(buf)
	require.Error(t, err)
}

func TestHueZCLTruncated(t *testing.T) {
	buf := []byte{0x01, 0x00} // on_off flag set, no payload byte
	_, err := DecodeHueZCL(buf)
	require.Error(t, err)
}
