package model

import "github.com/pkg/errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredential   = errors.New("invalid card number or PIN")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrStorage marks failures of the backing store. Callers should treat it
	// as retryable, unlike the business rule rejections above.
	ErrStorage = errors.New("storage error")

	// ErrBalanceConflict is returned by the store when the account version
	// moved between read and write.
	ErrBalanceConflict = errors.New("balance was modified concurrently")
)
