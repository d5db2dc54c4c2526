package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Checker verifies the admin passcode. The store only ever sees this
// interface, so a deployment can swap the hard-coded demo passcode for a
// real credential backend without touching the store.
type Checker interface {
	Check(password string) bool
}

// Static compares against a fixed passcode. Exact match only: no trimming,
// no case folding.
type Static struct {
	Passcode string
}

func (s Static) Check(password string) bool {
	if s.Passcode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Passcode), []byte(password)) == 1
}

// Bcrypt checks against a bcrypt hash, for deployments that refuse a
// plaintext passcode in the environment.
type Bcrypt struct {
	Hash string
}

func (b Bcrypt) Check(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(b.Hash), []byte(password)) == nil
}

func HashPasscode(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
