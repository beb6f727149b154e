package colorspace

import "math"

// WideGamutMaxX and WideGamutMaxY bound the chromaticity square the Hue
// wide-color-gamut quantization packs into 12 bits per axis.
const (
	WideGamutMaxX = 0.7347
	WideGamutMaxY = 0.8264
)

// D65 is the sRGB/Hue reference white point in xy.
var D65 = XY{X: 0.3127, Y: 0.3290}

// XY is a CIE 1931 chromaticity coordinate.
type XY struct {
	X float64
	Y float64
}

// ColorSpace is an RGB working space: its primaries (baked into the
// rgb<->xyz matrix) and its companding curve.
type ColorSpace struct {
	toXYZ   [9]float64
	fromXYZ [9]float64
	Gamma   Gamma
}

// NewColorSpace derives the RGB<->XYZ matrices from the space's primaries
// and white point, the standard colorimetry construction (Bruce Lindbloom's
// "RGB/XYZ Matrices" derivation), rather than hand-copying opaque constants.
func NewColorSpace(red, green, blue, white XY, gamma Gamma) ColorSpace {
	xr, yr := red.X, red.Y
	xg, yg := green.X, green.Y
	xb, yb := blue.X, blue.Y

	m := [9]float64{
		xr / yr, xg / yg, xb / yb,
		1, 1, 1,
		(1 - xr - yr) / yr, (1 - xg - yg) / yg, (1 - xb - yb) / yb,
	}

	wxyz := [3]float64{white.X / white.Y, 1, (1 - white.X - white.Y) / white.Y}

	inv, ok := invert3(m)
	if !ok {
		panic("colorspace: singular primary matrix")
	}
	s := mulVec3(inv, wxyz)

	toXYZ := [9]float64{
		m[0] * s[0], m[1] * s[1], m[2] * s[2],
		m[3] * s[0], m[4] * s[1], m[5] * s[2],
		m[6] * s[0], m[7] * s[1], m[8] * s[2],
	}
	fromXYZ, ok := invert3(toXYZ)
	if !ok {
		panic("colorspace: singular rgb matrix")
	}

	return ColorSpace{toXYZ: toXYZ, fromXYZ: fromXYZ, Gamma: gamma}
}

// Wide is the Hue "wide gamut C" working space used for Entertainment and
// gradient quantization: no companding, so values travel linearly.
var Wide = NewColorSpace(
	XY{X: 0.700607, Y: 0.299301},
	XY{X: 0.172416, Y: 0.746797},
	XY{X: 0.135503, Y: 0.039879},
	D65,
	NoGamma,
)

// SRGB is the standard display working space used when a client supplies
// plain RGB to the Entertainment stream.
var SRGB = NewColorSpace(
	XY{X: 0.64, Y: 0.33},
	XY{X: 0.30, Y: 0.60},
	XY{X: 0.15, Y: 0.06},
	D65,
	SRGBGamma,
)

// Adobe approximates Adobe RGB (1998), offered for completeness alongside
// the two gamuts the wire protocols actually negotiate.
var Adobe = NewColorSpace(
	XY{X: 0.64, Y: 0.33},
	XY{X: 0.21, Y: 0.71},
	XY{X: 0.15, Y: 0.06},
	D65,
	Gamma{Gamma: 1 / 2.19921875, Transition: 0, Slope: 1, Offset: 0},
)

// RGBToXYY converts a gamma-encoded RGB triple (each in [0,1]) to the
// chromaticity/brightness representation Hue uses on the wire.
func (c ColorSpace) RGBToXYY(r, g, b float64) (xy XY, brightness float64) {
	lr := c.Gamma.Decode(r)
	lg := c.Gamma.Decode(g)
	lb := c.Gamma.Decode(b)

	x := c.toXYZ[0]*lr + c.toXYZ[1]*lg + c.toXYZ[2]*lb
	y := c.toXYZ[3]*lr + c.toXYZ[4]*lg + c.toXYZ[5]*lb
	z := c.toXYZ[6]*lr + c.toXYZ[7]*lg + c.toXYZ[8]*lb

	sum := x + y + z
	if sum <= 0 {
		return D65, 0
	}
	return XY{X: x / sum, Y: y / sum}, y
}

// XYToRGB converts a chromaticity point plus brightness back to gamma
// encoded RGB, finding the maximum feasible brightness for that chromaticity
// via ten fixed-point iterations that rescale by the dominant channel,
// mirroring the reference bridge's own convergence loop.
func (c ColorSpace) XYToRGB(xy XY, brightness float64) (r, g, b float64) {
	x, y := xy.X, xy.Y
	if y <= 0 {
		return 0, 0, 0
	}

	X := x / y
	Y := 1.0
	Z := (1 - x - y) / y

	lr := c.fromXYZ[0]*X + c.fromXYZ[1]*Y + c.fromXYZ[2]*Z
	lg := c.fromXYZ[3]*X + c.fromXYZ[4]*Y + c.fromXYZ[5]*Z
	lb := c.fromXYZ[6]*X + c.fromXYZ[7]*Y + c.fromXYZ[8]*Z

	for i := 0; i < 10; i++ {
		maxc := math.Max(lr, math.Max(lg, lb))
		if maxc <= 0 {
			break
		}
		lr /= maxc
		lg /= maxc
		lb /= maxc
	}

	lr = clampF(lr, 0, 1) * brightness
	lg = clampF(lg, 0, 1) * brightness
	lb = clampF(lb, 0, 1) * brightness

	return c.Gamma.Encode(lr), c.Gamma.Encode(lg), c.Gamma.Encode(lb)
}

func invert3(m [9]float64) ([9]float64, bool) {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
	if det == 0 {
		return [9]float64{}, false
	}
	inv := 1 / det
	return [9]float64{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}

func mulVec3(m [9]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}
