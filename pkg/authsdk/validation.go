package authsdk

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

// Validation messages, shared with the server.
const (
	ReasonInvalidEmail     = "Invalid email"
	ReasonPasswordTooShort = "Password must be at least 8 characters long"
	ReasonInvalidMode      = "Invalid mode"
)

// Validate checks the credential fields.
// Returns a map of field names to error messages, or nil if all fields are valid.
func (c Credentials) Validate() map[string]string {
	errs := make(map[string]string)

	if msg := ValidateEmail(c.Email); msg != "" {
		errs["email"] = msg
	}
	if msg := ValidatePassword(c.Password); msg != "" {
		errs["password"] = msg
	}
	if msg := ValidateMode(c.Mode); msg != "" {
		errs["mode"] = msg
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks the logout body.
func (l LogoutRequest) Validate() map[string]string {
	if msg := ValidateMode(l.Mode); msg != "" {
		return map[string]string{"mode": msg}
	}
	return nil
}

// ValidateEmail returns "" for a bare address like a@x.com. Display names
// ("Alice <a@x.com>") are rejected.
func ValidateEmail(email string) string {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ReasonInvalidEmail
	}
	return ""
}

func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ReasonPasswordTooShort
	}
	return ""
}

func ValidateMode(mode string) string {
	if CookieForMode(mode) == "" {
		return ReasonInvalidMode
	}
	return ""
}
