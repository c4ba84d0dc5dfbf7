package trading

import "errors"

// Ledger operations fail with one of these sentinels, wrapped with
// context. Callers match with errors.Is; every failure leaves the ledger
// unchanged.
var (
	ErrInvalidQuantity      = errors.New("quantity must be a positive finite number")
	ErrInvalidAmount        = errors.New("amount must be a positive finite number")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrNoSuchHolding        = errors.New("no holding for symbol")
)
