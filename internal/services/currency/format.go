package currency

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NewMoney converts a major-unit amount into a money value in minor units.
// Unknown currency codes return nil.
func NewMoney(amount decimal.Decimal, code string) *money.Money {
	cur := money.GetCurrency(Code(code))
	if cur == nil {
		return nil
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code)
}

// FormatAmount renders amount with the currency's symbol and grouping.
// Unknown codes render as "1234.50 XYZ".
func FormatAmount(amount float64, code string) string {
	m := NewMoney(decimal.NewFromFloat(amount), code)
	if m == nil {
		return fmt.Sprintf("%.2f %s", amount, Code(code))
	}
	return m.Display()
}
