package domain

// LoginRequest is the payload for POST /user/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /user/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Description string `json:"description,omitempty"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	User    *User  `json:"user"`
	Message string `json:"message"`
}
