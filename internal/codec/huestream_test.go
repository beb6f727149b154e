package codec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHueStreamHeaderRoundTrip(t *testing.T) {
	h := HueStreamHeader{Version: 2, SeqNr: 5, ColorMode: ColorModeXY, Area: uuid.New()}
	buf := EncodeHueStreamHeader(h)
	require.Len(t, buf, HueStreamHeaderSize)

	got, err := ParseHueStreamHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHueStreamHeaderBadMagic(t *testing.T) {
	buf := EncodeHueStreamHeader(HueStreamHeader{Area: uuid.New()})
	buf[0] = 'X'
	_, err := ParseHueStreamHeader(buf)
	require.ErrorIs(t, err, ErrBadHeader)
}

func TestHueStreamPacketRoundTrip(t *testing.T) {
	header := HueStreamHeader{Version: 2, SeqNr: 1, ColorMode: ColorModeRGB, Area: uuid.New()}
	records := []HueStreamLightRecord{
		{Channel: 0, C0: 1000, C1: 2000, C2: 3000},
		{Channel: 1, C0: 500, C1: 600, C2: 700},
	}

	buf := append(EncodeHueStreamHeader(header), EncodeHueStreamBody(records)...)
	require.Len(t, buf, HueStreamSizeWithLights(2))

	pkt, err := ParseHueStreamPacket(buf)
	require.NoError(t, err)
	assert.Equal(t, header, pkt.Header)
	assert.Equal(t, records, pkt.Lights)
}
