package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	"github.com/noah-isme/forum-inscriptions-api/internal/registration"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

// NewValidator returns a validator that knows the regcode and
// workflow_status tags and reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("regcode", func(fl validator.FieldLevel) bool {
		return registration.ValidCode(fl.Field().String())
	})
	_ = v.RegisterValidation("workflow_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	return v
}

// firstFieldError converts the first validator failure into a field error
// using msg to pick the user-facing text.
func firstFieldError(err error, msg func(field, tag, value string) string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	fe := verrs[0]
	value, _ := fe.Value().(string)
	text := msg(fe.Field(), fe.Tag(), value)
	if text == "" {
		text = appErrors.ErrValidation.Message
	}
	return appErrors.FieldError(fe.Field(), text)
}
