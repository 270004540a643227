// Package forms validates the account screens' input before anything is sent
// to the auth provider.
package forms

import (
	"regexp"
	"strings"

	"tasknova/internal/service"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Register is the sign-up form.
type Register struct {
	Name     string
	Email    string
	Password string
}

// Validate checks name, email and password in that order and reports the
// first problem.
func (f Register) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return service.Invalid("name", "Name is required!")
	}
	if !namePattern.MatchString(name) {
		return service.Invalid("name", "Name must contain only alphabets!")
	}
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	password := strings.TrimSpace(f.Password)
	if password == "" {
		return service.Invalid("password", "Password is required!")
	}
	if len(password) < MinPasswordLength {
		return service.Invalid("password", "Password must be at least %d characters long!", MinPasswordLength)
	}
	return nil
}

// Login is the sign-in form.
type Login struct {
	Email    string
	Password string
}

// Validate checks email and password presence.
func (f Login) Validate() error {
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	if strings.TrimSpace(f.Password) == "" {
		return service.Invalid("password", "Password is required!")
	}
	return nil
}

// PasswordReset is the forgotten-password form.
type PasswordReset struct {
	Email string
}

// Validate checks that an email was entered.
func (f PasswordReset) Validate() error {
	if strings.TrimSpace(f.Email) == "" {
		return service.Invalid("email", "Please enter your email address")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return service.Invalid("email", "Email is required!")
	}
	if !emailPattern.MatchString(email) {
		return service.Invalid("email", "Enter a valid email address!")
	}
	return nil
}
