package domain

// Session is the client-held login state. Its meaning is defined by the identity provider;
// the service never stores it.
type Session struct {
	State       string `json:"state"`
	AccessToken string `json:"accessToken"`
}

// IsZero reports whether the session carries no access token
func (s Session) IsZero() bool {
	return s.AccessToken == ""
}
