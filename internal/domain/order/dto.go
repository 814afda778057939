package order

// CreateOrderDTO is the payload for purchasing a listing
type CreateOrderDTO struct {
	SellerID     string `json:"seller_id" validate:"required,uuid4"`
	ListingID    string `json:"listing_id" validate:"required,uuid4"`
	Price        int64  `json:"price" validate:"required,gt=0,lte=100000000"`
	Requirements string `json:"requirements" validate:"omitempty,max=2000"`
}
