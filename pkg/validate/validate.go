package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		err := instance.RegisterValidation("luhn", func(fl validator.FieldLevel) bool {
			return IsLuhn(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("register luhn validation: %v", err))
		}
	})
	return instance
}

// Struct validates a request DTO and flattens field errors into one message.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func IsLuhn(s string) bool {
	return goluhn.Validate(s) == nil
}

var ErrNotNumeric = errors.New("value must contain digits only")

// WithCheckDigit appends the Luhn check digit to a numeric string.
func WithCheckDigit(digits string) (string, error) {
	for d := '0'; d <= '9'; d++ {
		candidate := digits + string(d)
		if goluhn.Validate(candidate) == nil {
			return candidate, nil
		}
	}
	return "", ErrNotNumeric
}
