package models

// GoogleUserInfo is the profile returned by the Google userinfo endpoint.
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// SecretMemoPasswordReq sets the password protecting a user's secret memos.
type SecretMemoPasswordReq struct {
	Password string `json:"password"`
}
