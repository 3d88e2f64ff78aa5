package report

import "math"

// Converter converts a source-currency amount into the dashboard's reporting
// currency using a single statically configured rate. There is no live FX
// lookup and the rate is not date-sensitive; it is read once from config at
// process start.
type Converter struct {
	// Rate is the source-currency-to-target multiplier (e.g. USD→KRW).
	Rate float64
	// Decimals is the number of decimal places kept in the target currency.
	// KRW is a zero-decimal currency, so the default is 0.
	Decimals int
}

// Convert returns amount multiplied by the configured rate, rounded half away
// from zero at the configured precision.
func (c Converter) Convert(amount float64) float64 {
	p := math.Pow10(c.Decimals)
	return math.Round(amount*c.Rate*p) / p
}
