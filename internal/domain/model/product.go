package model

import "github.com/shopspring/decimal"

// Product is the catalog view the checkout needs. Photo bytes are never loaded.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	HasPhoto    bool
}
