package apperr

import (
	stdErrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// FromValidation turns validator field errors into a validation error listing each failing field.
func FromValidation(err error) error {
	if err == nil || As(err) != nil {
		return err
	}
	var fieldErrs validator.ValidationErrors
	if !stdErrors.As(err, &fieldErrs) {
		return err
	}
	details := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field())
		details[fe.Field()] = validationMessage(fe)
	}
	return Wrap(CodeValidation, err, "Missing or invalid fields: "+strings.Join(names, ", ")).WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}
