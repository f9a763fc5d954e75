package domain

// LoginRequest is the shared-PIN login payload. Name identifies who is
// using the app on the shop phone, not a separate account.
type LoginRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	Name        string `json:"name"`
}
