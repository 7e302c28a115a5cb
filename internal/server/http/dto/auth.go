package dto

// AuthRequest describes login/password payload. Role is read on registration only.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse returns the issued session token.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}
