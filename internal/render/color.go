package render

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV converts an 8-bit hue wheel position (0-255 covers the full circle),
// saturation and value into a strip color.
func HSV(hue, sat, val uint8) RGB {
	c := colorful.Hsv(float64(hue)*360.0/256.0, float64(sat)/255.0, float64(val)/255.0)
	return fromColorful(c)
}

// Palette maps an 8-bit index onto a gradient of evenly spaced stops.
type Palette []colorful.Color

// At returns the blended color for index, scaled by brightness.
func (p Palette) At(index, brightness uint8) RGB {
	if len(p) == 0 {
		return Black
	}
	if len(p) == 1 {
		return fromColorful(p[0]).Scale(brightness)
	}
	pos := float64(index) / 256.0 * float64(len(p))
	i := int(pos)
	t := pos - float64(i)
	a := p[i%len(p)]
	b := p[(i+1)%len(p)]
	return fromColorful(a.BlendRgb(b, t)).Scale(brightness)
}

// PartyColors is a saturated purple/orange/pink/blue cycle.
var PartyColors = Palette{
	hex("#5500AB"), hex("#84007C"), hex("#B5004B"), hex("#E5001B"),
	hex("#E81700"), hex("#B84700"), hex("#AB7700"), hex("#ABAB00"),
	hex("#AB5500"), hex("#DD2200"), hex("#F2000E"), hex("#C2003E"),
	hex("#8F0071"), hex("#5F00A1"), hex("#2F00D0"), hex("#0007F9"),
}

// HeatColors runs from black through red and yellow to white; it does not wrap.
var HeatColors = heatPalette{
	hex("#000000"), hex("#330000"), hex("#660000"), hex("#990000"),
	hex("#CC0000"), hex("#FF0000"), hex("#FF3300"), hex("#FF6600"),
	hex("#FF9900"), hex("#FFCC00"), hex("#FFFF00"), hex("#FFFF33"),
	hex("#FFFF66"), hex("#FFFF99"), hex("#FFFFCC"), hex("#FFFFFF"),
}

type heatPalette []colorful.Color

// At blends without wrapping the last stop back to black.
func (p heatPalette) At(index, brightness uint8) RGB {
	pos := float64(index) / 255.0 * float64(len(p)-1)
	i := int(pos)
	if i >= len(p)-1 {
		return fromColorful(p[len(p)-1]).Scale(brightness)
	}
	return fromColorful(p[i].BlendRgb(p[i+1], pos-float64(i))).Scale(brightness)
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
