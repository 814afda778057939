package order

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidPrice      = errors.New("order price must be positive")
	ErrSelfPurchase      = errors.New("cannot purchase from yourself")
	ErrNotYourOrder      = errors.New("order belongs to another user")
	ErrInvalidTransition = errors.New("order status does not allow this action")
	ErrOrderCompleted    = errors.New("completed orders cannot be deleted")
)
