package codec

import (
	"encoding/binary"
	"fmt"
)

// HueZCL flag bits, in bit-index order. Bit order and wire order are not
// the same thing: gradient_colors(8), effect_speed(7) and
// gradient_params(6) are numbered in descending order but are always
// read and written in that same physical sequence by both
// EncodeHueZCL and DecodeHueZCL, so the two stay mutually symmetric.
const (
	FlagOnOff uint16 = 1 << iota
	FlagBrightness
	FlagColorMirek
	FlagColorXY
	FlagFadeSpeed
	FlagEffectType
	FlagGradientParams
	FlagEffectSpeed
	FlagGradientColors
)

const allKnownFlags = FlagOnOff | FlagBrightness | FlagColorMirek | FlagColorXY |
	FlagFadeSpeed | FlagEffectType | FlagGradientParams | FlagEffectSpeed | FlagGradientColors

// GradientStyle is the layout a gradient's points render across.
type GradientStyle uint8

const (
	GradientStyleLinear    GradientStyle = 0
	GradientStyleScattered GradientStyle = 2
	GradientStyleMirrored  GradientStyle = 4
)

// EffectType is the Hue-specific dynamic-effect enum carried in the
// composite update (distinct from the CLIP v2 LightEffectType strings).
type EffectType uint8

const (
	EffectTypeNoEffect   EffectType = 0x00
	EffectTypeCandle     EffectType = 0x01
	EffectTypeFireplace  EffectType = 0x02
	EffectTypePrism      EffectType = 0x03
	EffectTypeSunrise    EffectType = 0x09
	EffectTypeSparkle    EffectType = 0x0a
	EffectTypeOpal       EffectType = 0x0b
	EffectTypeGlisten    EffectType = 0x0c
	EffectTypeUnderwater EffectType = 0x0e
	EffectTypeCosmos     EffectType = 0x0f
	EffectTypeSunbeam    EffectType = 0x10
	EffectTypeEnchant    EffectType = 0x11
)

// GradientParams is the 2-byte scale/offset pair controlling how a
// gradient's points map onto a strip's physical segments.
type GradientParams struct {
	Scale  uint8
	Offset uint8
}

// DefaultGradientParams matches the reference bridge's own default.
var DefaultGradientParams = GradientParams{Scale: 0x08, Offset: 0x00}

// GradientColorXY is one 3-byte quantized XY point inside a gradient block.
type GradientColorXY [3]byte

// HueZigbeeUpdate is the composite, flag-tagged Hue ZCL light-update
// command: a sparse set of optional fields, each gated by its own bit.
type HueZigbeeUpdate struct {
	OnOff           *bool
	Brightness      *uint8
	ColorMirek      *uint16
	ColorX, ColorY  *uint16
	FadeSpeed       *uint16
	EffectType      *EffectType
	GradientParams  *GradientParams
	EffectSpeed     *uint8
	GradientStyle   GradientStyle
	GradientColors  []GradientColorXY
	hasGradient     bool
}

func (u *HueZigbeeUpdate) WithOnOff(v bool) *HueZigbeeUpdate {
	u.OnOff = &v
	return u
}

func (u *HueZigbeeUpdate) WithBrightness(v uint8) *HueZigbeeUpdate {
	u.Brightness = &v
	return u
}

func (u *HueZigbeeUpdate) WithColorMirek(v uint16) *HueZigbeeUpdate {
	u.ColorMirek = &v
	return u
}

func (u *HueZigbeeUpdate) WithColorXY(x, y uint16) *HueZigbeeUpdate {
	u.ColorX = &x
	u.ColorY = &y
	return u
}

func (u *HueZigbeeUpdate) WithFadeSpeed(v uint16) *HueZigbeeUpdate {
	u.FadeSpeed = &v
	return u
}

func (u *HueZigbeeUpdate) WithEffectType(v EffectType) *HueZigbeeUpdate {
	u.EffectType = &v
	return u
}

func (u *HueZigbeeUpdate) WithGradientParams(scale, offset uint8) *HueZigbeeUpdate {
	u.GradientParams = &GradientParams{Scale: scale, Offset: offset}
	return u
}

func (u *HueZigbeeUpdate) WithEffectSpeed(v uint8) *HueZigbeeUpdate {
	u.EffectSpeed = &v
	return u
}

func (u *HueZigbeeUpdate) WithGradientColors(style GradientStyle, colors []GradientColorXY) *HueZigbeeUpdate {
	u.GradientStyle = style
	u.GradientColors = colors
	u.hasGradient = true
	return u
}

func (u *HueZigbeeUpdate) flags() uint16 {
	var f uint16
	if u.OnOff != nil {
		f |= FlagOnOff
	}
	if u.Brightness != nil {
		f |= FlagBrightness
	}
	if u.ColorMirek != nil {
		f |= FlagColorMirek
	}
	if u.ColorX != nil && u.ColorY != nil {
		f |= FlagColorXY
	}
	if u.FadeSpeed != nil {
		f |= FlagFadeSpeed
	}
	if u.EffectType != nil {
		f |= FlagEffectType
	}
	if u.GradientParams != nil {
		f |= FlagGradientParams
	}
	if u.EffectSpeed != nil {
		f |= FlagEffectSpeed
	}
	if u.hasGradient {
		f |= FlagGradientColors
	}
	return f
}

// EncodeHueZCL serializes the update. Field order on the wire does not
// match bit order: gradient_colors (bit 8) is written before effect_speed
// (bit 7), which is written before gradient_params (bit 6). DecodeHueZCL
// reads the three back in this same order.
func EncodeHueZCL(u *HueZigbeeUpdate) []byte {
	flags := u.flags()
	buf := make([]byte, 2, 16)
	binary.LittleEndian.PutUint16(buf[0:2], flags)

	if u.OnOff != nil {
		var v uint8
		if *u.OnOff {
			v = 1
		}
		buf = append(buf, v)
	}
	if u.Brightness != nil {
		buf = append(buf, *u.Brightness)
	}
	if u.ColorMirek != nil {
		buf = binary.LittleEndian.AppendUint16(buf, *u.ColorMirek)
	}
	if u.ColorX != nil && u.ColorY != nil {
		buf = binary.LittleEndian.AppendUint16(buf, *u.ColorX)
		buf = binary.LittleEndian.AppendUint16(buf, *u.ColorY)
	}
	if u.FadeSpeed != nil {
		buf = binary.LittleEndian.AppendUint16(buf, *u.FadeSpeed)
	}
	if u.EffectType != nil {
		buf = append(buf, byte(*u.EffectType))
	}
	if u.hasGradient {
		buf = append(buf, encodeGradientBlock(u.GradientStyle, u.GradientColors)...)
	}
	if u.EffectSpeed != nil {
		buf = append(buf, *u.EffectSpeed)
	}
	if u.GradientParams != nil {
		buf = append(buf, u.GradientParams.Scale, u.GradientParams.Offset)
	}

	return buf
}

func encodeGradientBlock(style GradientStyle, colors []GradientColorXY) []byte {
	n := len(colors)
	header := make([]byte, 4)
	header[0] = byte(n & 0x0F) // nlights:4 | resv0:4
	header[1] = byte(style)
	// header[2:4] reserved

	out := make([]byte, 0, 1+len(header)+len(colors)*3)
	out = append(out, byte(4+3*n))
	out = append(out, header...)
	for _, c := range colors {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

// DecodeHueZCL parses a composite update, consuming bytes in the same
// physical order EncodeHueZCL writes them: gradient_colors, then
// effect_speed, then gradient_params.
func DecodeHueZCL(buf []byte) (*HueZigbeeUpdate, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("codec: short HueZCL update: %d bytes", len(buf))
	}
	flags := binary.LittleEndian.Uint16(buf[0:2])
	if flags&^allKnownFlags != 0 {
		return nil, fmt.Errorf("codec: unknown HueZCL flag bits: %#x", flags&^allKnownFlags)
	}

	u := &HueZigbeeUpdate{}
	pos := 2

	need := func(n int) error {
		if pos+n > len(buf) {
			return fmt.Errorf("codec: truncated HueZCL update at byte %d", pos)
		}
		return nil
	}

	if flags&FlagOnOff != 0 {
		if err := need(1); err != nil {
			return nil, err
		}
		v := buf[pos] != 0
		u.OnOff = &v
		pos++
	}
	if flags&FlagBrightness != 0 {
		if err := need(1); err != nil {
			return nil, err
		}
		v := buf[pos]
		u.Brightness = &v
		pos++
	}
	if flags&FlagColorMirek != 0 {
		if err := need(2); err != nil {
			return nil, err
		}
		v := binary.LittleEndian.Uint16(buf[pos:])
		u.ColorMirek = &v
		pos += 2
	}
	if flags&FlagColorXY != 0 {
		if err := need(4); err != nil {
			return nil, err
		}
		x := binary.LittleEndian.Uint16(buf[pos:])
		y := binary.LittleEndian.Uint16(buf[pos+2:])
		u.ColorX, u.ColorY = &x, &y
		pos += 4
	}
	if flags&FlagFadeSpeed != 0 {
		if err := need(2); err != nil {
			return nil, err
		}
		v := binary.LittleEndian.Uint16(buf[pos:])
		u.FadeSpeed = &v
		pos += 2
	}
	if flags&FlagEffectType != 0 {
		if err := need(1); err != nil {
			return nil, err
		}
		v := EffectType(buf[pos])
		u.EffectType = &v
		pos++
	}
	if flags&FlagGradientColors != 0 {
		if err := need(1); err != nil {
			return nil, err
		}
		blockLen := int(buf[pos])
		pos++
		if err := need(4); err != nil {
			return nil, err
		}
		n := int(buf[pos] & 0x0F)
		style := GradientStyle(buf[pos+1])
		pos += 4
		if blockLen != 4+3*n {
			return nil, fmt.Errorf("codec: gradient block length %d does not match %d lights", blockLen, n)
		}
		if err := need(n * 3); err != nil {
			return nil, err
		}
		colors := make([]GradientColorXY, n)
		for i := 0; i < n; i++ {
			copy(colors[i][:], buf[pos:pos+3])
			pos += 3
		}
		u.GradientStyle = style
		u.GradientColors = colors
		u.hasGradient = true
	}
	if flags&FlagEffectSpeed != 0 {
		if err := need(1); err != nil {
			return nil, err
		}
		v := buf[pos]
		u.EffectSpeed = &v
		pos++
	}
	if flags&FlagGradientParams != 0 {
		if err := need(2); err != nil {
			return nil, err
		}
		u.GradientParams = &GradientParams{Scale: buf[pos], Offset: buf[pos+1]}
		pos += 2
	}

	return u, nil
}
