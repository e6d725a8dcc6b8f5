package coupon

import (
	"context"
	"strings"

	"bihar-bazaar/internal/model"
)

// Evaluator resolves a user-entered coupon code to a discount.
type Evaluator interface {
	// Evaluate normalises the code and returns the matching coupon,
	// or model.ErrInvalidCoupon when the code is unknown.
	Evaluate(ctx context.Context, code string) (model.Coupon, error)
}

// Table maps normalised coupon codes to discount percentages.
type Table interface {
	// Lookup returns the discount percent for a normalised code.
	Lookup(code string) (int, bool)

	// Size returns the number of codes in the table.
	Size() int
}

// Loader defines the interface for loading coupon tables.
type Loader interface {
	// Load reads a gzipped CODE,PERCENT file and returns a Table.
	Load(ctx context.Context, path string) (Table, error)
}

// Normalize trims and uppercases a raw code. Codes are case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
