package colorspace

// CCTToXY converts a color temperature in Kelvin to a CIE xy chromaticity
// point using the Kang et al. (2002) third-degree polynomial approximation
// of the Planckian locus, the same three piecewise branches (by mirek
// range) the reference bridge uses.
func CCTToXY(kelvin float64) XY {
	return cctToXY(kelvin)
}

func cctToXY(cct float64) XY {
	var x float64
	switch {
	case cct <= 4000:
		x = -0.2661239e9/cube(cct) - 0.2343589e6/sq(cct) + 0.8776956e3/cct + 0.179910
	default:
		x = -3.0258469e9/cube(cct) + 2.1070379e6/sq(cct) + 0.2226347e3/cct + 0.240390
	}

	var y float64
	switch {
	case cct <= 2222:
		y = -1.1063814*cube(x) - 1.34811020*sq(x) + 2.18555832*x - 0.20219683
	case cct <= 4000:
		y = -0.9549476*cube(x) - 1.37418593*sq(x) + 2.09137015*x - 0.16748867
	default:
		y = 3.0817580*cube(x) - 5.87338670*sq(x) + 3.75112997*x - 0.37001483
	}

	return XY{X: x, Y: y}
}

func sq(v float64) float64   { return v * v }
func cube(v float64) float64 { return v * v * v }

// MirekToXY converts a mirek value (1e6/kelvin) to chromaticity.
func MirekToXY(mirek uint16) XY {
	if mirek == 0 {
		return D65
	}
	return cctToXY(1e6 / float64(mirek))
}
