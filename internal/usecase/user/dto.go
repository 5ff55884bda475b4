package user

// RegisterRequest represents the request payload for creating an account.
// Password is checked separately so that its absence is always reported first.
type RegisterRequest struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	PhoneNo  string `validate:"required"`
	Password string
}

// RegisterResponse represents the response payload after registration.
type RegisterResponse struct {
	ID int64
}

// LoginRequest represents a one-shot credential check.
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse carries no token or session; a successful login only
// confirms the credentials.
type LoginResponse struct {
	Username string
}
