// Package validation wraps go-playground/validator with English messages
// keyed by the json/mapstructure field names callers actually send.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates structs and renders the first failure as a message.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// New builds a Validator. It panics only if the bundled translations fail
// to register, which is a programming error.
func New() *Validator {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("validation: register translations: %v", err))
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: validate, trans: trans}
}

// Struct validates v and returns a *FieldError for the first failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &FieldError{
		Field:   fieldPath(fe.Namespace()),
		Message: fe.Translate(v.trans),
	}
}

// Var validates a single value against a tag, naming it field in errors.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	return &FieldError{
		Field:   field,
		Message: field + strings.TrimPrefix(verrs[0].Translate(v.trans), verrs[0].Field()),
	}
}

// fieldPath drops the root struct name from a namespace like
// "gradeRequest.rating".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
