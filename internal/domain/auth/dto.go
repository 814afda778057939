package auth

// RegisterDTO is the signup payload; referrer_id is optional
type RegisterDTO struct {
	Email      string `json:"email" validate:"required,email"`
	Username   string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	ReferrerID string `json:"referrer_id" validate:"omitempty,uuid4"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
