package wallet

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrDisplayIDExhaust  = errors.New("display id generation exhausted retries")
)
