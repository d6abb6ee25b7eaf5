package display

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tayloree/shopcli/internal/api"
)

const currencySymbol = "₹"

// FormatPrice renders an amount with thousands separators, dropping the
// paise when the amount is whole: 12499 -> "₹12,499", 99.5 -> "₹99.50".
func FormatPrice(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole := d.Truncate(0)
	out := sign + currencySymbol + groupThousands(whole.String())
	if !d.Equal(whole) {
		frac := d.Sub(whole).StringFixed(2) // "0.50"
		out += strings.TrimPrefix(frac, "0")
	}
	return out
}

// Savings returns how much cheaper the product is than its original price,
// and the rounded percentage. Both are zero when there is no markdown.
func Savings(p api.Product) (decimal.Decimal, int) {
	if p.OriginalPrice == nil {
		return decimal.Zero, 0
	}
	original := decimal.NewFromFloat(*p.OriginalPrice)
	price := decimal.NewFromFloat(p.Price)
	if !original.GreaterThan(price) || !original.IsPositive() {
		return decimal.Zero, 0
	}

	saved := original.Sub(price)
	pct := saved.Div(original).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return saved, int(pct)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
