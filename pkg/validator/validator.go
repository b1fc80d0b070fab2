package validator

import (
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("datekey", validateDateKey)
	_ = v.RegisterValidation("timeslot", validateTimeSlot)

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
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
			case "datekey":
				errors[field] = field + " must be a date in D_M_YYYY format"
			case "timeslot":
				errors[field] = field + " must be a time such as 2:30 PM"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func validateDateKey(fl validator.FieldLevel) bool {
	_, err := slot.ParseDateKey(fl.Field().String())
	return err == nil
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	_, err := slot.ParseTimeSlot(fl.Field().String())
	return err == nil
}
