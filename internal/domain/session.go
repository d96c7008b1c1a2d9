package domain

// GoogleTokens is the OAuth token set cached in a session. ExpiryDate is unix milliseconds.
type GoogleTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
}

// GoogleProfile is the subset of the Google userinfo response kept in a session.
type GoogleProfile struct {
	ID      string  `json:"id"`
	Email   *string `json:"email"`
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
}
