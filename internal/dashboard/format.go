package dashboard

import (
	"fmt"
	"math"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) > 3 {
		var b strings.Builder
		start := len(s) % 3
		if start > 0 {
			b.WriteString(s[:start])
		}
		for i := start; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatMoney formats a dollar amount as $X,XXX.XX.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := int(v)
	cents := int(math.Round((v - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	return fmt.Sprintf("%s$%s.%02d", sign, FormatInt(whole), cents)
}

// FormatPct formats a signed percentage as "+X.XX%" / "-X.XX%".
func FormatPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// sparkLevels are the eight block glyphs used for terminal sparklines.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// SparkBar renders a price sequence as a unicode block-glyph strip for
// terminal display. Fewer than two prices yields an empty string, the
// same insufficient-data policy as the chart geometry.
func SparkBar(prices []float64) string {
	if len(prices) < 2 {
		return ""
	}

	min, max := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	rng := max - min

	var b strings.Builder
	for _, p := range prices {
		level := len(sparkLevels) / 2
		if rng > 0 {
			level = int((p - min) / rng * float64(len(sparkLevels)-1))
		}
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}
