package validator

import (
	"medibook/pkg/calendar"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	// HH:MM slot strings
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return calendar.IsClock(fl.Field().String())
	})
	// YYYY-MM-DD calendar dates
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := calendar.ParseDate(fl.Field().String())
		return err == nil
	})
	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Var validates a single value against a tag expression, e.g. Var(slot, "clock").
func (cv *CustomValidator) Var(field interface{}, tag string) error {
	return cv.validator.Var(field, tag)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			case "clock":
				errors[field] = field + " must be a time in HH:MM format"
			case "isodate":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "unique":
				errors[field] = field + " must not contain duplicates"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
