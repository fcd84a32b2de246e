package render

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the single currency documents are issued in.
const Currency = money.INR

// Core PDF fonts have no rupee glyph.
var plainFormatter = money.NewFormatter(2, ".", ",", "Rs. ", "$1")

// minorUnits rounds d half away from zero to paise.
func minorUnits(d decimal.Decimal) int64 {
	cur := money.GetCurrency(Currency)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return d.Mul(factor).Round(0).IntPart()
}

// FormatINR renders d with the rupee sign, e.g. ₹1,234.50.
func FormatINR(d decimal.Decimal) string {
	return money.New(minorUnits(d), Currency).Display()
}

// FormatAmount renders d with two decimals and grouping, without a symbol.
func FormatAmount(d decimal.Decimal) string {
	return money.NewFormatter(2, ".", ",", "", "1").Format(minorUnits(d))
}

// formatPlainINR is FormatINR for fonts limited to Latin-1.
func formatPlainINR(d decimal.Decimal) string {
	return plainFormatter.Format(minorUnits(d))
}
