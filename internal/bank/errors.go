package bank

import "errors"

// Error types for store operations
var (
	ErrCapacityExceeded      = errors.New("maximum number of accounts reached")
	ErrAccountNotFound       = errors.New("account not found")
	ErrInvalidTransferAmount = errors.New("invalid transfer amount or insufficient funds")
	ErrIDSpaceExhausted      = errors.New("no free account number left")
)
