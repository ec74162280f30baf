package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is a parsed #RRGGBB colour.
type RGB struct {
	R, G, B uint8
}

// ParseHex reads #RRGGBB or the #RGB shorthand. The leading # is optional.
func ParseHex(hex string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q", hex)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ASS renders the colour as &HAABBGGRR with the given two digit alpha.
func (c RGB) ASS(alpha string) string {
	return fmt.Sprintf("&H%s%02X%02X%02X", strings.ToUpper(alpha), c.B, c.G, c.R)
}

// AlphaHex converts an opacity in [0,1] to the two digit ASS alpha byte.
// Halves round to even, so 0.7 maps to B2.
func AlphaHex(opacity float64) string {
	opacity = math.Max(0, math.Min(1, opacity))
	return fmt.Sprintf("%02X", int(math.RoundToEven(opacity*255)))
}
