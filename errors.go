package identity

import (
	"database/sql"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

const (
	TextCodeMissingEmail   = "identity_missing_email"
	TextCodeSignupDisabled = "identity_signup_disabled"
	TextCodeRateLimited    = "identity_rate_limited"
)

// ErrMissingEmail is returned when a user record has no email.
var ErrMissingEmail = errors.New("user email is required", errors.CategoryValidation).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeBadRequest)

// ErrSignupDisabled is returned when signups are frozen and the email has
// neither an admin allowance nor a pending invitation. It renders as a
// dedicated error page, not a generic failure.
var ErrSignupDisabled = errors.New("new user sign ups are disabled", errors.CategoryAuth).
	WithTextCode(TextCodeSignupDisabled).
	WithCode(errors.CodeForbidden)

// ErrRateLimited is returned when the caller exceeded the sign-in window.
var ErrRateLimited = errors.New("too many sign in attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeRateLimited)

// IsNotFound reports whether err represents record absence. Point lookups
// and verification-token consumption translate this into a nil record.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return err == sql.ErrNoRows || repository.IsRecordNotFound(err)
}

// wrapStoreError normalizes persistence faults without masking rich errors.
func wrapStoreError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	return errors.Wrap(err, errors.CategoryOperation, msg)
}
