package z2m

import "strings"

// capabilities is the set of lighting features this bridge cares about,
// extracted by walking a device's z2m expose tree once at ingest time.
type capabilities struct {
	isLight      bool
	dimming      bool
	colorTemp    bool
	mirekMin     uint16
	mirekMax     uint16
	colorXY      bool
	gradientCap  int
	hueEffects   bool
	effectValues []string
}

const (
	defaultMirekMin = 153
	defaultMirekMax = 500
)

// extractCapabilities walks def.Exposes looking for the top-level "light"
// feature and, inside it, the sub-features the composite update needs.
// Manufacturer-specific Hue effects are only trusted for Signify devices,
// matching the reference bridge's own vendor gate.
func extractCapabilities(def *Definition) capabilities {
	caps := capabilities{mirekMin: defaultMirekMin, mirekMax: defaultMirekMax}
	if def == nil {
		return caps
	}

	signify := strings.EqualFold(def.Vendor, "Signify")

	for _, exp := range def.Exposes {
		if exp.Type != "light" {
			continue
		}
		caps.isLight = true
		walkLightFeatures(exp.Features, &caps, signify)
	}

	return caps
}

func walkLightFeatures(features []Expose, caps *capabilities, signify bool) {
	for _, f := range features {
		switch f.Property {
		case "brightness":
			caps.dimming = true
		case "color_temp":
			caps.colorTemp = true
			if f.ValueMin != nil {
				caps.mirekMin = uint16(*f.ValueMin)
			}
			if f.ValueMax != nil {
				caps.mirekMax = uint16(*f.ValueMax)
			}
		case "color_xy", "color":
			caps.colorXY = true
		case "gradient":
			if f.Length != nil {
				caps.gradientCap = *f.Length
			} else {
				caps.gradientCap = 1
			}
		case "effect":
			if signify {
				caps.hueEffects = true
				for _, v := range f.Features {
					if v.Name != "" {
						caps.effectValues = append(caps.effectValues, v.Name)
					}
				}
			}
		}
		if len(f.Features) > 0 && f.Property == "" {
			walkLightFeatures(f.Features, caps, signify)
		}
	}
}
