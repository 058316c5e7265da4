package httpapi

import (
	"github.com/go-playground/validator/v10"
)

// requestValidator checks request DTOs against their validate tags.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}
