package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator plugs go-playground/validator into echo's c.Validate
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{validate: v}
}

// Validate returns an InvalidArgument error naming every failing field
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.InvalidArgument(err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperr.InvalidArgument(strings.Join(msgs, "; "))
}
