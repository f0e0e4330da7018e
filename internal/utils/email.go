package utils

import (
	"errors"
	"strings"
)

// ErrInvalidEmail is returned for addresses that cannot key the profile directory
var ErrInvalidEmail = errors.New("invalid email address")

// DirectoryKey normalizes an identity-provider email into the form stored in the profile
// directory and the activity tables. Two spellings of one mailbox yield the same key.
// The provider has verified the address; only values without a mailbox and a domain fail.
func DirectoryKey(email string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(key, "@")
	if at <= 0 || at == len(key)-1 {
		return "", ErrInvalidEmail
	}
	return key, nil
}
