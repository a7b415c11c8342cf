package utils

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the local@domain.tld shape check used for every email
// the service accepts.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NewValidator returns a validator with the project's custom tags:
// "mailbox" checks the email shape above.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	}); err != nil {
		// Only fails on a malformed tag name.
		panic(err)
	}
	return v
}

// FirstFieldError returns the first failed field check in err, if any.
func FirstFieldError(err error) (validator.FieldError, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0], true
	}
	return nil, false
}
