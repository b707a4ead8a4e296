package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color holds normalized RGBA components in [0,1], as SplatNet sends them.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

func channelToByte(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

// ColorToHex renders c as "#rrggbbaa".
func ColorToHex(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x%02x",
		channelToByte(c.R), channelToByte(c.G), channelToByte(c.B), channelToByte(c.A))
}

// ColorFromHex parses "#rrggbb" or "#rrggbbaa" (the leading # is optional).
// A missing alpha channel is fully opaque.
func ColorFromHex(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, &DecodeError{Field: "color", Value: s, Reason: "want 6 or 8 hex digits"}
	}

	channel := func(i int) (float64, error) {
		n, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return 0, &DecodeError{Field: "color", Value: s, Reason: "invalid hex digit"}
		}
		return float64(n) / 255, nil
	}

	var c Color
	var err error
	if c.R, err = channel(0); err != nil {
		return Color{}, err
	}
	if c.G, err = channel(2); err != nil {
		return Color{}, err
	}
	if c.B, err = channel(4); err != nil {
		return Color{}, err
	}
	c.A = 1.0
	if len(hex) == 8 {
		if c.A, err = channel(6); err != nil {
			return Color{}, err
		}
	}
	return c, nil
}
