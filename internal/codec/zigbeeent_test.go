package codec

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZigbeeEntRecordLayout(t *testing.T) {
	raw := [3]byte{0xAA, 0xBB, 0xCC}

	seg := NewZigbeeEntLightRecord(0x1122, 0x7FF, LightRecordModeSegment, raw)
	encoded := EncodeZigbeeEntFrame(ZigbeeEntHeader{}, []ZigbeeEntLightRecord{seg})
	assert.Equal(t, "2211e0ffaabbcc", hex.EncodeToString(encoded[zigbeeEntHeaderSize:]))

	dev := NewZigbeeEntLightRecord(0x1122, 0x7FF, LightRecordModeDevice, raw)
	encoded = EncodeZigbeeEntFrame(ZigbeeEntHeader{}, []ZigbeeEntLightRecord{dev})
	assert.Equal(t, "2211ebffaabbcc", hex.EncodeToString(encoded[zigbeeEntHeaderSize:]))
}

func TestZigbeeEntFrameRoundTrip(t *testing.T) {
	h := ZigbeeEntHeader{Counter: 7, Smoothing: DefaultSmoothing}
	records := []ZigbeeEntLightRecord{
		NewZigbeeEntLightRecord(0x1122, 0x7FF, LightRecordModeDevice, [3]byte{0xAA, 0xBB, 0xCC}),
		NewZigbeeEntLightRecord(0x3344, 0x001, LightRecordModeSegment, [3]byte{0x01, 0x02, 0x03}),
	}

	buf := EncodeZigbeeEntFrame(h, records)
	gotHeader, gotRecords, err := DecodeZigbeeEntFrame(buf)
	require.NoError(t, err)

	assert.Equal(t, h, gotHeader)
	require.Len(t, gotRecords, 2)
	assert.Equal(t, records[0], gotRecords[0])
	assert.Equal(t, records[1], gotRecords[1])
}

func TestZigbeeEntFrameShort(t *testing.T) {
	_, _, err := DecodeZigbeeEntFrame([]byte{0, 1, 2})
	require.Error(t, err)
}
