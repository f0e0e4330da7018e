package domain

import "time"

// UserInfo is the canonical user description returned by the identity provider
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// ProfileDirectoryEntry maps an identity-provider email to the upstream profile id
type ProfileDirectoryEntry struct {
	Email     string    `json:"email" db:"email"`
	ProfileID int64     `json:"profile_id" db:"profile_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
