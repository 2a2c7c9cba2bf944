// Package currency defines the currency codes the bank operates with and
// their precision metadata.
package currency

// Code is an ISO 4217 currency code.
type Code string

const (
	// KZT is the default operating currency.
	KZT Code = "KZT"
	// USD is supported for foreign-currency accounts.
	USD Code = "USD"
	// EUR is supported for foreign-currency accounts.
	EUR Code = "EUR"
)

// DefaultCurrency is used whenever a request does not specify one.
const DefaultCurrency = KZT

// supported maps each currency to the number of decimal places amounts carry.
var supported = map[Code]int{
	KZT: 2,
	USD: 2,
	EUR: 2,
}

// IsSupported reports whether the bank operates in the given currency.
func IsSupported(code Code) bool {
	_, ok := supported[code]
	return ok
}

// Decimals returns the amount scale for a supported currency. The second
// return value is false for unknown codes.
func Decimals(code Code) (int, bool) {
	d, ok := supported[code]
	return d, ok
}
