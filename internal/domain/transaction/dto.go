package transaction

// CreateRequestDTO is the payload for opening a top-up or withdrawal
type CreateRequestDTO struct {
	Type     string `json:"type" validate:"required,tx_request_type"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Method   string `json:"method" validate:"required,min=2,max=64"`
	UserTxID string `json:"user_tx_id" validate:"omitempty,max=128"`
}

// ProcessRequestDTO is the admin decision payload
type ProcessRequestDTO struct {
	Decision string `json:"decision" validate:"required,tx_decision"`
	Note     string `json:"note" validate:"omitempty,max=500"`
	Reason   string `json:"reason" validate:"omitempty,max=500"`
}
