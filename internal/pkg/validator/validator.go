package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Wallet request type validation
	validate.RegisterValidation("tx_request_type", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		return t == "top_up" || t == "withdrawal"
	})

	// Admin decision validation
	validate.RegisterValidation("tx_decision", func(fl validator.FieldLevel) bool {
		d := fl.Field().String()
		return d == "approved" || d == "failed"
	})

	// Role validation
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []string{"user", "employee", "admin"}
		for _, r := range validRoles {
			if role == r {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "tx_request_type":
			errors[field] = "Invalid type. Must be: top_up or withdrawal"
		case "tx_decision":
			errors[field] = "Invalid decision. Must be: approved or failed"
		case "role":
			errors[field] = "Invalid role. Must be: user, employee, or admin"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
