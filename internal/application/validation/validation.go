package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"followup/internal/domain/contact"
	"followup/internal/domain/person"
)

// custom validation tags
const (
	PhoneTag    = "phone"
	GenderTag   = "gender"
	NotBlankTag = "notblank"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	// english messages for the built-in tags
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON field names instead of Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(PhoneTag, phoneValidation)
	_ = validate.RegisterValidation(GenderTag, genderValidation)
	_ = validate.RegisterValidation(NotBlankTag, notBlankValidation)

	// the default translations are already registered, so a noop register
	// func satisfies RegisterTranslation for the custom tags
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{PhoneTag, GenderTag, NotBlankTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

// FieldErrors maps a JSON field name to a human-readable message.
type FieldErrors map[string]string

// Error lists the fields in a stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// Struct validates v against its `validate` tags.
// POST: Returns nil, FieldErrors for tag violations, or the validator's error
// for a non-struct argument
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fldErrs := make(FieldErrors, len(vErrs))
	for _, vErr := range vErrs {
		fldErrs[vErr.Field()] = vErr.Translate(translator)
	}
	return fldErrs
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case PhoneTag:
		s, _ := fe.Value().(string)
		if err := contact.ValidatePhone(s); err != nil {
			return err.Error()
		}
		return "invalid phone number"
	case GenderTag:
		return "must be one of: " + strings.Join(person.Genders, ", ")
	case NotBlankTag:
		return "this field cannot be blank"
	default:
		return ""
	}
}

func phoneValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && contact.ValidatePhone(s) == nil
}

func genderValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && person.IsValidGender(s)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(s) != ""
}
