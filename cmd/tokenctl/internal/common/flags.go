package common

import (
	"github.com/NilFoundation/tokenctl/internal/amount"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// QuantityValue is a pflag.Value holding a positive human quantity such as "1.5".
type QuantityValue struct {
	Quantity decimal.Decimal
}

var _ pflag.Value = (*QuantityValue)(nil)

func NewQuantityValue(defaultQuantity int64) *QuantityValue {
	return &QuantityValue{Quantity: decimal.NewFromInt(defaultQuantity)}
}

func (v *QuantityValue) Set(s string) error {
	q, err := amount.ParseQuantity(s)
	if err != nil {
		return err
	}
	v.Quantity = q
	return nil
}

func (v *QuantityValue) String() string {
	return v.Quantity.String()
}

func (v *QuantityValue) Type() string {
	return "quantity"
}
