// Package codec implements the packed binary wire formats the bridge
// speaks: the HueStream DTLS entertainment frame, the composite Hue ZCL
// light-update command, and the Zigbee entertainment multicast frame.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// HueStreamHeaderSize is the fixed 52-byte header every HueStream packet
// starts with.
const HueStreamHeaderSize = 52

var huestreamMagic = [9]byte{'H', 'u', 'e', 'S', 't', 'r', 'e', 'a', 'm'}

// ErrBadHeader is returned when a HueStream packet's magic does not match.
var ErrBadHeader = errors.New("codec: bad HueStream header magic")

// HueStreamColorMode selects how the 3 body uint16s per channel are
// interpreted.
type HueStreamColorMode uint8

const (
	ColorModeRGB HueStreamColorMode = 0
	ColorModeXY  HueStreamColorMode = 1
)

// HueStreamHeader is the fixed 52-byte preamble of every Entertainment
// packet, naming the streaming protocol version, a monotonic sequence
// number, the color encoding, and the EntertainmentConfiguration UUID
// ("area") the frame targets.
type HueStreamHeader struct {
	Version   uint16
	SeqNr     uint8
	ColorMode HueStreamColorMode
	Area      uuid.UUID
}

// ParseHueStreamHeader parses exactly HueStreamHeaderSize bytes.
func ParseHueStreamHeader(buf []byte) (HueStreamHeader, error) {
	if len(buf) < HueStreamHeaderSize {
		return HueStreamHeader{}, fmt.Errorf("codec: short HueStream header: %d bytes", len(buf))
	}
	var magic [9]byte
	copy(magic[:], buf[0:9])
	if magic != huestreamMagic {
		return HueStreamHeader{}, ErrBadHeader
	}

	version := binary.BigEndian.Uint16(buf[9:11])
	seqnr := buf[11]
	// buf[12:14] reserved
	colorMode := HueStreamColorMode(buf[14])
	// buf[15] reserved
	areaASCII := buf[16:52]

	area, err := uuid.Parse(string(areaASCII))
	if err != nil {
		return HueStreamHeader{}, fmt.Errorf("codec: bad HueStream area uuid: %w", err)
	}

	return HueStreamHeader{Version: version, SeqNr: seqnr, ColorMode: colorMode, Area: area}, nil
}

// EncodeHueStreamHeader is the inverse of ParseHueStreamHeader.
func EncodeHueStreamHeader(h HueStreamHeader) []byte {
	buf := make([]byte, HueStreamHeaderSize)
	copy(buf[0:9], huestreamMagic[:])
	binary.BigEndian.PutUint16(buf[9:11], h.Version)
	buf[11] = h.SeqNr
	buf[14] = byte(h.ColorMode)
	copy(buf[16:52], []byte(h.Area.String()))
	return buf
}

// HueStreamLightRecord is one 7-byte per-channel body record.
type HueStreamLightRecord struct {
	Channel uint8
	C0, C1, C2 uint16
}

const hueStreamRecordSize = 7

// HueStreamSizeWithLights returns the total packet size for n channels,
// used by the Entertainment server to size its read buffer up front.
func HueStreamSizeWithLights(n int) int {
	return HueStreamHeaderSize + n*hueStreamRecordSize
}

// ParseHueStreamBody splits the record section following the header.
func ParseHueStreamBody(buf []byte) ([]HueStreamLightRecord, error) {
	if len(buf)%hueStreamRecordSize != 0 {
		return nil, fmt.Errorf("codec: HueStream body length %d not a multiple of %d", len(buf), hueStreamRecordSize)
	}
	n := len(buf) / hueStreamRecordSize
	out := make([]HueStreamLightRecord, n)
	for i := 0; i < n; i++ {
		rec := buf[i*hueStreamRecordSize:]
		out[i] = HueStreamLightRecord{
			Channel: rec[0],
			C0:      binary.BigEndian.Uint16(rec[1:3]),
			C1:      binary.BigEndian.Uint16(rec[3:5]),
			C2:      binary.BigEndian.Uint16(rec[5:7]),
		}
	}
	return out, nil
}

// EncodeHueStreamBody is the inverse of ParseHueStreamBody.
func EncodeHueStreamBody(records []HueStreamLightRecord) []byte {
	out := make([]byte, 0, len(records)*hueStreamRecordSize)
	for _, r := range records {
		out = append(out, r.Channel)
		out = binary.BigEndian.AppendUint16(out, r.C0)
		out = binary.BigEndian.AppendUint16(out, r.C1)
		out = binary.BigEndian.AppendUint16(out, r.C2)
	}
	return out
}

// HueStreamPacket is a fully parsed frame: header plus typed light records.
type HueStreamPacket struct {
	Header HueStreamHeader
	Lights []HueStreamLightRecord
}

// ParseHueStreamPacket parses a full packet (header + body) in one call.
func ParseHueStreamPacket(buf []byte) (HueStreamPacket, error) {
	if len(buf) < HueStreamHeaderSize {
		return HueStreamPacket{}, fmt.Errorf("codec: short HueStream packet: %d bytes", len(buf))
	}
	header, err := ParseHueStreamHeader(buf)
	if err != nil {
		return HueStreamPacket{}, err
	}
	lights, err := ParseHueStreamBody(buf[HueStreamHeaderSize:])
	if err != nil {
		return HueStreamPacket{}, err
	}
	return HueStreamPacket{Header: header, Lights: lights}, nil
}
