package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var kebabCase = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)+$`)

var (
	once     sync.Once
	validate *playground.Validate
)

func instance() *playground.Validate {
	once.Do(func() {
		validate = playground.New(playground.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "" {
				return fld.Name
			}
			return name
		})
		// registration only fails on empty tags or nil funcs
		_ = validate.RegisterValidation("kebab", func(fl playground.FieldLevel) bool {
			return kebabCase.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct validates v using `validate` tags.
// Field failures are returned as ValidationErrors; anything else is a system error.
func ValidateStruct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validator: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, convert(fe))
	}
	return out
}

func convert(fe playground.FieldError) ValidationError {
	values := map[string]any{"field": fe.Field()}
	if fe.Param() != "" {
		values["param"] = fe.Param()
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "Cannot be empty"
	case "max":
		msg = fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		msg = fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "kebab":
		msg = "Must be kebab case"
	case "url", "http_url":
		msg = "Must be a valid URL"
	case "eqfield":
		msg = "Does not match"
	case "oneof":
		msg = "Must be one of: " + fe.Param()
	default:
		msg = "Is invalid"
	}

	return ValidationError{
		Field:             fe.Field(),
		Message:           msg,
		TranslationKey:    "validation." + fe.Tag(),
		TranslationValues: values,
	}
}
