package referral

import "errors"

var (
	ErrAlreadyPaid = errors.New("referral commission already paid")
)
