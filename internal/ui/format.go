package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/nuramustaphaali/nurastore/internal/api"
)

// NairaSign is the currency prefix on every rendered price.
const NairaSign = "₦"

// FormatNaira renders an amount with the naira sign and thousands
// grouping, e.g. ₦1,500 and ₦12,500.50. Whole amounts drop the decimal
// part, matching toLocaleString in the old frontend.
func FormatNaira(amount api.Naira) string {
	return NairaSign + FormatAmount(amount)
}

// FormatAmount renders the number only, without the currency sign.
func FormatAmount(amount api.Naira) string {
	v := float64(amount)
	neg := v < 0
	if neg {
		v = -v
	}

	// Work in kobo so the fractional part can never round up past .99.
	kobo := int64(math.Round(v * 100))
	whole := kobo / 100
	frac := kobo % 100

	out := groupThousands(fmt.Sprintf("%d", whole))
	if frac > 0 {
		out += fmt.Sprintf(".%02d", frac)
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
