package endian

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Single-byte strings are ISO-8859-1: every byte maps to exactly one rune and
// back, so fixed-width ASCII fields survive a decode/encode cycle unchanged.

func decodeSingleByte(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("endian: decode single-byte string: %w", err)
	}
	return string(out), nil
}

func encodeSingleByte(s string) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("endian: encode %q as single-byte string: %w", s, err)
	}
	return out, nil
}

// fitUnits truncates or zero-pads UTF-16 code units to exactly n units. A
// trailing high surrogate left alone by truncation is dropped.
func fitUnits(s string, n int) []uint16 {
	units := utf16.Encode([]rune(s))
	if len(units) > n {
		units = units[:n]
		if n > 0 && utf16.IsSurrogate(rune(units[n-1])) && units[n-1] < 0xDC00 {
			units[n-1] = 0
		}
	}
	out := make([]uint16, n)
	copy(out, units)
	return out
}
