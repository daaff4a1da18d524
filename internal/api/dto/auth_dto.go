package dto

// Data Transfer Objects for the email + confirmation-code handshake

// SendCodeRequest: payload for requesting a confirmation code
type SendCodeRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
}

// SendCodeResponse echoes the email only; the code travels out-of-band
type SendCodeResponse struct {
	Email string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code for tokens
type TokenRequest struct {
	Email            string `json:"email" binding:"required,email"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=100"`
}

// TokenResponse: issued token pair
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest: payload for refreshing an access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse: fresh access token
type RefreshResponse struct {
	Token string `json:"token"`
}
