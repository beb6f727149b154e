package hue

import "github.com/google/uuid"

// On is the shared on/off state embedded in Light and GroupedLight.
type On struct {
	On bool `json:"on"`
}

// Dimming is brightness as a percentage in [0,100], Hue's own unit.
type Dimming struct {
	Brightness float64 `json:"brightness"`
}

// ColorTemperature is mirek plus the schema bounds the device reports.
type ColorTemperature struct {
	Mirek        *uint16 `json:"mirek"`
	MirekValid   bool    `json:"mirek_valid"`
	MirekSchema  *MirekSchema `json:"mirek_schema,omitempty"`
}

type MirekSchema struct {
	MirekMinimum uint16 `json:"mirek_minimum"`
	MirekMaximum uint16 `json:"mirek_maximum"`
}

// LightColor carries the XY chromaticity plus the gamut the device
// reports support for.
type LightColor struct {
	XY    XYJSON     `json:"xy"`
	Gamut *ColorGamut `json:"gamut,omitempty"`
}

type XYJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ColorGamut struct {
	Red   XYJSON `json:"red"`
	Green XYJSON `json:"green"`
	Blue  XYJSON `json:"blue"`
}

type LightGradientMode string

const (
	GradientModeInterpolatedPalette         LightGradientMode = "interpolated_palette"
	GradientModeInterpolatedPaletteMirrored LightGradientMode = "interpolated_palette_mirrored"
	GradientModeRandomPixelated             LightGradientMode = "random_pixelated"
)

type LightGradientPoint struct {
	Color LightColor `json:"color"`
}

type LightGradient struct {
	Points    []LightGradientPoint `json:"points"`
	Mode      LightGradientMode    `json:"mode"`
	PointsCap int                  `json:"points_capable"`
}

type LightEffectType string

const (
	EffectNoEffect   LightEffectType = "no_effect"
	EffectCandle     LightEffectType = "candle"
	EffectFireplace  LightEffectType = "fireplace"
	EffectPrism      LightEffectType = "prism"
	EffectSunrise    LightEffectType = "sunrise"
	EffectSparkle    LightEffectType = "sparkle"
	EffectOpal       LightEffectType = "opal"
	EffectGlisten    LightEffectType = "glisten"
	EffectUnderwater LightEffectType = "underwater"
	EffectCosmos     LightEffectType = "cosmos"
	EffectSunbeam    LightEffectType = "sunbeam"
	EffectEnchant    LightEffectType = "enchant"
)

// Light is a CLIP v2 light resource: the richest variant, and the only one
// a z2m-backed adapter actually drives over the wire.
type Light struct {
	ID               uuid.UUID         `json:"-"`
	OwnerLink        ResourceLink      `json:"owner"`
	Metadata         Metadata          `json:"metadata"`
	ProductData      *LightProductData `json:"product_data,omitempty"`
	On               On                `json:"on"`
	Dimming          *Dimming          `json:"dimming,omitempty"`
	ColorTemperature *ColorTemperature `json:"color_temperature,omitempty"`
	Color            *LightColor       `json:"color,omitempty"`
	Gradient         *LightGradient    `json:"gradient,omitempty"`
	Effects          *LightEffectsV2   `json:"effects,omitempty"`
	Mode             string            `json:"mode"`
}

func (l *Light) RType() RType        { return RTypeLight }
func (l *Light) Owner() ResourceLink { return l.OwnerLink }

// AsDimmingOpt mirrors the teacher model's helper of the same shape: a
// pointer-friendly accessor returning a copy of the dimming state, or nil.
func (l *Light) AsDimmingOpt() *Dimming {
	if l.Dimming == nil {
		return nil
	}
	d := *l.Dimming
	return &d
}

type LightProductData struct {
	ModelID         string `json:"model_id"`
	ManufacturerName string `json:"manufacturer_name"`
}

type LightEffectsV2 struct {
	Status     LightEffectType   `json:"status"`
	StatusVals []LightEffectType `json:"status_values"`
}

// Metadata is the {name, archetype} pair every top-level resource carries.
type Metadata struct {
	Name      string `json:"name"`
	Archetype string `json:"archetype,omitempty"`
}

// LightUpdate is a partial PUT body; nil fields are left untouched.
type LightUpdate struct {
	On               *On               `json:"on,omitempty"`
	Dimming          *DimmingUpdate    `json:"dimming,omitempty"`
	ColorTemperature *ColorTemperatureUpdate `json:"color_temperature,omitempty"`
	Color            *ColorUpdate      `json:"color,omitempty"`
	Gradient         *LightGradientUpdate `json:"gradient,omitempty"`
	Effects          *LightEffectsV2Update `json:"effects,omitempty"`
}

type DimmingUpdate struct {
	Brightness float64 `json:"brightness"`
}

type ColorTemperatureUpdate struct {
	Mirek uint16 `json:"mirek"`
}

type ColorUpdate struct {
	XY XYJSON `json:"xy"`
}

type LightGradientUpdate struct {
	Points []LightGradientPoint `json:"points"`
	Mode   LightGradientMode    `json:"mode"`
}

type LightEffectsV2Update struct {
	Action LightEffectType `json:"effect"`
}

// Apply mutates l in place per the partial update, the same narrowing style
// the store's generic Update uses for every variant.
func (l *Light) Apply(u LightUpdate) {
	if u.On != nil {
		l.On = *u.On
	}
	if u.Dimming != nil {
		l.Dimming = &Dimming{Brightness: u.Dimming.Brightness}
	}
	if u.ColorTemperature != nil {
		mirek := u.ColorTemperature.Mirek
		if l.ColorTemperature == nil {
			l.ColorTemperature = &ColorTemperature{}
		}
		l.ColorTemperature.Mirek = &mirek
		l.ColorTemperature.MirekValid = true
		if l.Color != nil {
			l.Color = nil
		}
	}
	if u.Color != nil {
		l.Color = &LightColor{XY: u.Color.XY}
		if l.ColorTemperature != nil {
			l.ColorTemperature.MirekValid = false
		}
	}
	if u.Gradient != nil {
		if l.Gradient == nil {
			l.Gradient = &LightGradient{}
		}
		l.Gradient.Points = u.Gradient.Points
		l.Gradient.Mode = u.Gradient.Mode
	}
	if u.Effects != nil && l.Effects != nil {
		l.Effects.Status = u.Effects.Action
	}
}
