package utils

import (
	"SalvadoDental/models"
	"errors"
	"log"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNotComplex = errors.New("password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
)

var (
	personNameRegex = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑüÜ ]+$`)
	phoneRegex      = regexp.MustCompile(`^[0-9]+$`)

	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[@$!%*?&.#_\-]`)
)

// ValidateProfileData validates the registration fields of a profile and its chosen password.
func ValidateProfileData(profile models.Profile, password string) error {
	err := validation.Errors{
		"first_name": validation.Validate(profile.FirstName, validation.Required, validation.Length(1, 60),
			validation.Match(personNameRegex).Error("must contain letters and spaces only")),
		"last_name": validation.Validate(profile.LastName, validation.Required, validation.Length(1, 60),
			validation.Match(personNameRegex).Error("must contain letters and spaces only")),
		"email": validation.Validate(profile.Email, validation.Required, is.Email),
		"phone": validation.Validate(profile.Phone, validation.Required, validation.Length(7, 15),
			validation.Match(phoneRegex).Error("must contain digits only")),
		"dob":      validation.Validate(profile.DateOfBirth, validation.Required, validation.Date(models.DateOfBirthLayout)),
		"password": validation.Validate(password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
	}.Filter()
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// validatePassword checks the password for length and complexity.
func validatePassword(value interface{}) error {
	password, _ := value.(string)

	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	if !lowercaseRegex.MatchString(password) ||
		!uppercaseRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!specialRegex.MatchString(password) {
		return ErrPasswordNotComplex
	}

	return nil
}
