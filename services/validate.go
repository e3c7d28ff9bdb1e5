package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names so messages match what the client sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

// validateStruct runs the `validate` tags of in and returns a Validation error with
// every field problem joined by ", ".
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return ValidationError("%s", err.Error())
	}
	msgs := make([]string, 0, len(valErrs))
	for _, fe := range valErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return ValidationError("%s", strings.Join(msgs, ", "))
}

func fieldMessage(f validator.FieldError) string {
	field := f.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch f.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, f.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, f.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, f.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, f.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, f.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, f.Param())
	case "dive":
		return fmt.Sprintf("%s is invalid", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, f.Tag())
	}
}
