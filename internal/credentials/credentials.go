// Package credentials validates and persists the login details for the
// trading site.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tradebump/tradebump/internal/types"
)

var ErrNotFound = errors.New("no credentials stored, run the login command first")

// A Store persists a single credential record.
type Store interface {
	Get() (types.Credentials, error)
	Set(types.Credentials) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// trimmed rejects leading and trailing whitespace
	err := v.RegisterValidation("trimmed", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == strings.TrimSpace(s)
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register validation 'trimmed': %v", err))
	}
	return v
}

// Validate checks all fields of c and returns a readable error for the first
// invalid one.
func Validate(c types.Credentials) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	return nil
}

// ValidateField validates a single value against the rules of the given
// Credentials field, eg. "EmailAddress".
func ValidateField(field, value string) error {
	c := types.Credentials{}
	switch field {
	case "Username":
		c.Username = value
	case "EmailAddress":
		c.EmailAddress = value
	case "Password":
		c.Password = value
	default:
		return fmt.Errorf("unknown credentials field %s", field)
	}
	if err := validate.StructPartial(c, field); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", fe.Field())
	case "email":
		return fmt.Errorf("%s is not a valid email address", fe.Field())
	case "trimmed":
		return fmt.Errorf("%s must not start or end with whitespace", fe.Field())
	default:
		return fmt.Errorf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// FromEnv returns credentials taken from the environment. The second return
// value is false if not all three variables are set.
func FromEnv() (types.Credentials, bool) {
	c := types.Credentials{
		Username:     os.Getenv("TRADEBUMP_USERNAME"),
		EmailAddress: os.Getenv("TRADEBUMP_EMAIL"),
		Password:     os.Getenv("TRADEBUMP_PASSWORD"),
	}
	if c.Username == "" || c.EmailAddress == "" || c.Password == "" {
		return types.Credentials{}, false
	}
	return c, true
}

// Load returns the credentials for a bump run. Environment variables take
// precedence over the stored record.
func Load(s Store) (types.Credentials, error) {
	c, ok := FromEnv()
	if !ok {
		var err error
		c, err = s.Get()
		if err != nil {
			return types.Credentials{}, err
		}
	}
	if err := Validate(c); err != nil {
		return types.Credentials{}, fmt.Errorf("invalid credentials: %w", err)
	}
	return c, nil
}
