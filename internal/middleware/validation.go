package middleware

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

// phoneRegexp accepts local 8-digit numbers starting with 6, 8 or 9
var phoneRegexp = regexp.MustCompile(`^[689]\d{7}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("sgphone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(fl.Field().String())
	})
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ValidateVar validates a single value against a tag expression
func ValidateVar(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

// DecodeAndValidate decodes a JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidPhone reports whether s is a well-formed phone number
func ValidPhone(s string) bool {
	return phoneRegexp.MatchString(s)
}
