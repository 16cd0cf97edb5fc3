package trader

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity rejects non-positive hand counts before any lookup.
var ErrInvalidQuantity = errors.New("hands must be greater than zero")

// NoHoldingError reports a sell against a code with no open position.
type NoHoldingError struct {
	Code string
}

func (e *NoHoldingError) Error() string {
	return fmt.Sprintf("no holding in %s", e.Code)
}

// InsufficientFundsError reports a buy whose cost exceeds available cash.
type InsufficientFundsError struct {
	Cash     float64
	Required float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %.2f, need %.2f", e.Cash, e.Required)
}

// OverSellError reports a sell for more shares than are held.
type OverSellError struct {
	Held      int
	Requested int
}

func (e *OverSellError) Error() string {
	return fmt.Sprintf("sell of %d shares exceeds holding of %d", e.Requested, e.Held)
}
