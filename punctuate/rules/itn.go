package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Inverse text normalization: convert spoken Chinese numbers to written
// forms. Rule-based, covering percentages, years, decimals, and counts
// with common units.

var cnDigits = map[rune]int64{
	'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var (
	percentRE = regexp.MustCompile(`百分之([零一二三四五六七八九十百千两〇点\d.]+)`)
	yearRE    = regexp.MustCompile(`([零一二三四五六七八九〇]{4})年`)
	decimalRE = regexp.MustCompile(`([一二三四五六七八九十百千两]+)点([一二三四五六七八九零〇\d]+)`)
	unitRE    = regexp.MustCompile(`([一二三四五六七八九十百千两零〇]+)(亿|万|家|个|人)`)
)

// normalizeNumbers applies the conversion passes. Percentages run first so
// the decimal rule does not consume their digits.
func normalizeNumbers(text string) string {
	text = percentRE.ReplaceAllStringFunc(text, func(m string) string {
		inner := percentRE.FindStringSubmatch(m)[1]
		return convertNumber(inner) + "%"
	})

	text = yearRE.ReplaceAllStringFunc(text, func(m string) string {
		inner := yearRE.FindStringSubmatch(m)[1]
		var b strings.Builder
		for _, r := range inner {
			if d, ok := cnDigits[r]; ok {
				fmt.Fprintf(&b, "%d", d)
			}
		}
		return b.String() + "年"
	})

	text = decimalRE.ReplaceAllStringFunc(text, func(m string) string {
		parts := decimalRE.FindStringSubmatch(m)
		return fmt.Sprintf("%d.%s", parseCNInt(parts[1]), mapDigits(parts[2]))
	})

	text = unitRE.ReplaceAllStringFunc(text, func(m string) string {
		parts := unitRE.FindStringSubmatch(m)
		return fmt.Sprintf("%d%s", parseCNInt(parts[1]), parts[2])
	})

	return text
}

// convertNumber handles a percentage body, which may contain a decimal
// point ("三点五" in "百分之三点五").
func convertNumber(s string) string {
	intPart, decPart, hasDec := strings.Cut(s, "点")
	out := fmt.Sprintf("%d", parseCNInt(intPart))
	if hasDec {
		out += "." + mapDigits(decPart)
	}
	return out
}

// parseCNInt parses a spoken Chinese integer with 十/百/千 place markers.
// Arabic digits pass through positionally.
func parseCNInt(s string) int64 {
	var total, pending int64
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			pending = pending*10 + int64(r-'0')
		case r == '十':
			if pending == 0 {
				pending = 1
			}
			total += pending * 10
			pending = 0
		case r == '百':
			total += pending * 100
			pending = 0
		case r == '千':
			total += pending * 1000
			pending = 0
		default:
			if d, ok := cnDigits[r]; ok {
				pending = d
			}
		}
	}
	return total + pending
}

// mapDigits converts a digit-by-digit spoken sequence ("五六" in 25.6).
func mapDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if d, ok := cnDigits[r]; ok {
			fmt.Fprintf(&b, "%d", d)
		} else if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
