package domain

// BarStyle selects the Georgian bar layout of the sashes.
type BarStyle string

const (
	BarStyle1Over1 BarStyle = "1over1"
	BarStyle2Over2 BarStyle = "2over2"
	BarStyle4Over4 BarStyle = "4over4"
	BarStyle6Over6 BarStyle = "6over6"
	BarStyleCustom BarStyle = "custom"
)

// GlassType selects the glazing unit.
type GlassType string

const (
	GlassTypeDouble  GlassType = "double"
	GlassTypeTriple  GlassType = "triple"
	GlassTypePassive GlassType = "passive"
)

// GlassFinish selects the pane finish.
type GlassFinish string

const (
	GlassFinishClear   GlassFinish = "clear"
	GlassFinishFrosted GlassFinish = "frosted"
)

// FrameColor is the painted or stained frame finish.
type FrameColor string

const (
	FrameColorWhite FrameColor = "white"
	FrameColorCream FrameColor = "cream"
	FrameColorGrey  FrameColor = "grey"
	FrameColorBlack FrameColor = "black"
	FrameColorGreen FrameColor = "green"
	FrameColorOak   FrameColor = "oak"
)

// OpeningType describes which sashes slide.
type OpeningType string

const (
	OpeningBoth   OpeningType = "both"
	OpeningBottom OpeningType = "bottom"
	OpeningFixed  OpeningType = "fixed"
)

// Hardware is the ironmongery finish. It is carried for rendering and never priced.
type Hardware string

const (
	HardwareBrass  Hardware = "brass"
	HardwareChrome Hardware = "chrome"
	HardwareBlack  Hardware = "black"
	HardwareSatin  Hardware = "satin"
)

const (
	DefaultWidthMM  = 900
	DefaultHeightMM = 1200
	MinQuantity     = 1
	MaxQuantity     = 100
)

// MaxDimensionMM caps either side of a quoted window.
const MaxDimensionMM = 5000

// WindowConfiguration is the customer's selection submitted for pricing.
type WindowConfiguration struct {
	WidthMM     float64
	HeightMM    float64
	Quantity    int
	Style       BarStyle
	GlassType   GlassType
	GlassFinish GlassFinish
	Color       FrameColor
	Hardware    Hardware
	Opening     OpeningType
	PAS24       bool
	Laminated   bool
	KeyLocks    bool
}

// DefaultWindowConfiguration returns the configuration shown before the customer changes anything.
func DefaultWindowConfiguration() WindowConfiguration {
	return WindowConfiguration{
		WidthMM:     DefaultWidthMM,
		HeightMM:    DefaultHeightMM,
		Quantity:    MinQuantity,
		Style:       BarStyle1Over1,
		GlassType:   GlassTypeDouble,
		GlassFinish: GlassFinishClear,
		Color:       FrameColorWhite,
		Hardware:    HardwareBrass,
		Opening:     OpeningBoth,
	}
}

// ClampQuantity bounds an order quantity to what a single quote may carry.
func ClampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

var colorDisplayNames = map[FrameColor]string{
	FrameColorWhite: "Pure White",
	FrameColorCream: "Cream",
	FrameColorGrey:  "Anthracite Grey",
	FrameColorBlack: "Black",
	FrameColorGreen: "Heritage Green",
	FrameColorOak:   "Natural Oak",
}

var styleDisplayNames = map[BarStyle]string{
	BarStyle1Over1: "1 over 1",
	BarStyle2Over2: "2 over 2",
	BarStyle4Over4: "4 over 4",
	BarStyle6Over6: "6 over 6",
	BarStyleCustom: "Custom",
}

// DisplayName returns the customer-facing colour name, or the raw key when unknown.
func (c FrameColor) DisplayName() string {
	if name, ok := colorDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// DisplayName returns the customer-facing style name, or the raw key when unknown.
func (s BarStyle) DisplayName() string {
	if name, ok := styleDisplayNames[s]; ok {
		return name
	}
	return string(s)
}

// PriceBreakdown is the itemised quote for a configuration. Currency fields are GBP rounded to
// pence except BarsPrice; Discount and SizeMultiplier are unrounded fractions.
type PriceBreakdown struct {
	BasePrice      float64
	BarsPrice      float64
	GlassPrice     float64
	OptionsPrice   float64
	Subtotal       float64
	Discount       float64
	DiscountAmount float64
	UnitPrice      float64
	TotalPrice     float64
	VATAmount      float64
	TotalWithVAT   float64
	SquareMeters   float64
	SizeMultiplier float64
	Quantity       int
}
