package utils

import (
	"github.com/go-playground/validator/v10"

	"github.com/ecosistemala/meetingup-backend/pkg/rut"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Custom validations
	v.RegisterValidation("rut", validateRut)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// FieldErrors flattens validator errors into field -> message pairs so the
// signup form can redisplay them inline.
func (v *Validator) FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["form"] = err.Error()
		return out
	}
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required"
		case "email":
			out[fe.Field()] = "Enter a valid email address"
		case "min":
			out[fe.Field()] = "Value is too short"
		case "max":
			out[fe.Field()] = "Value is too long"
		case "rut":
			out[fe.Field()] = "Enter a valid RUT"
		default:
			out[fe.Field()] = "Invalid value"
		}
	}
	return out
}

func validateRut(fl validator.FieldLevel) bool {
	_, err := rut.Validate(fl.Field().String())
	return err == nil
}
