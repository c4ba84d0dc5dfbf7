package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/vivekxkt/trading-app/internal/engines/trading"
)

// GetCurrentTimestamp returns the current Unix timestamp in milliseconds
func GetCurrentTimestamp() int64 {
	return time.Now().UnixMilli()
}

// statusForLedgerError maps ledger sentinel errors to HTTP status codes.
func statusForLedgerError(err error) int {
	switch {
	case errors.Is(err, trading.ErrInvalidQuantity), errors.Is(err, trading.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, trading.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, trading.ErrNoSuchHolding):
		return http.StatusNotFound
	case errors.Is(err, trading.ErrInsufficientQuantity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
