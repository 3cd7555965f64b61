// Package contrast derives foreground styling decisions from a card's
// background color using the WCAG relative-luminance model.
package contrast

import (
	"math"
	"strconv"
	"strings"
)

// RGB is a color in 8-bit sRGB channels.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Reference colors for the foreground decision.
var (
	White = RGB{R: 255, G: 255, B: 255}
	Black = RGB{}
)

// DarkForegroundThreshold is the WCAG AA contrast ratio for normal
// text. A background on which dark text reaches it is light enough to
// require dark text.
const DarkForegroundThreshold = 4.5

// HexToRGB parses a 3- or 6-digit hex color, with or without a leading
// "#". Any other length, or invalid hex digits, yields nil; callers
// treat nil as "no color supplied, use default styling".
func HexToRGB(hex string) *RGB {
	cleaned := strings.TrimSpace(strings.ReplaceAll(hex, "#", ""))

	if len(cleaned) == 3 {
		expanded := make([]byte, 0, 6)
		for i := 0; i < 3; i++ {
			expanded = append(expanded, cleaned[i], cleaned[i])
		}
		cleaned = string(expanded)
	}
	if len(cleaned) != 6 {
		return nil
	}

	r, err1 := strconv.ParseUint(cleaned[0:2], 16, 8)
	g, err2 := strconv.ParseUint(cleaned[2:4], 16, 8)
	b, err3 := strconv.ParseUint(cleaned[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}

	return &RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
}

// toLinear applies the sRGB-to-linear transform to one channel.
func toLinear(c uint8) float64 {
	s := float64(c) / 255
	if s <= 0.03928 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the WCAG relative luminance of a color.
func RelativeLuminance(c RGB) float64 {
	return 0.2126*toLinear(c.R) + 0.7152*toLinear(c.G) + 0.0722*toLinear(c.B)
}

// ContrastRatio returns the WCAG contrast ratio between two colors.
// It is symmetric in its arguments and 1 for identical colors.
func ContrastRatio(a, b RGB) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)

	lighter := math.Max(la, lb)
	darker := math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

// NeedsDarkForeground reports whether a background is light enough
// that dark text must be used on it: dark text's contrast ratio
// against the background meets the AA threshold. A white background
// scores 21 against black text and needs it; a black background
// scores 1 and keeps the light default.
func NeedsDarkForeground(bg RGB) bool {
	return ContrastRatio(bg, Black) >= DarkForegroundThreshold
}

// DarkForegroundForHex applies NeedsDarkForeground to a raw hex color
// field. Invalid or absent colors keep the default light styling.
func DarkForegroundForHex(hex string) bool {
	rgb := HexToRGB(hex)
	if rgb == nil {
		return false
	}
	return NeedsDarkForeground(*rgb)
}
