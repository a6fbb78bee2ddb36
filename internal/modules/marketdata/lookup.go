// Package marketdata resolves instrument names and latest prices from an
// external quote service, and refreshes stored position prices.
package marketdata

// UnknownName is returned when a stock code cannot be resolved to a name.
const UnknownName = "未知"

// Lookup is the external price/name collaborator.
//
// ResolveName never fails; unresolvable codes get the UnknownName sentinel.
// FetchPrice fails closed: network or data errors come back as ok=false,
// never as an error value, so batch operations can proceed past individual
// failures.
type Lookup interface {
	ResolveName(code string) string
	FetchPrice(code string) (price float64, ok bool)
}

// Info bundles a name+price probe for one stock code.
type Info struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Success bool    `json:"success"`
}

// GetInfo resolves both name and latest price for a code.
func GetInfo(lookup Lookup, code string) Info {
	price, ok := lookup.FetchPrice(code)
	if !ok {
		price = 0
	}
	return Info{
		Code:    code,
		Name:    lookup.ResolveName(code),
		Price:   price,
		Success: ok,
	}
}
