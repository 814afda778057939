package transaction

import "errors"

var (
	ErrNotFound         = errors.New("wallet transaction request not found")
	ErrAlreadyProcessed = errors.New("request already processed")
	ErrInvalidType      = errors.New("invalid request type")
	ErrInvalidDecision  = errors.New("invalid decision")
	ErrReasonRequired   = errors.New("rejection reason is required")
	ErrMethodRequired   = errors.New("payment or withdrawal method is required")
)
