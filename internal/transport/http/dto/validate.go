package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/iset-library/internal/domain"
)

// bcrypt refuses passwords longer than 72 bytes.
const maxPasswordBytes = 72

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("password_bytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)
	_ = validate.RegisterTranslation("password_bytes", trans,
		func(t ut.Translator) error {
			return t.Add("password_bytes", "{0} must be at most 72 bytes", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("password_bytes", fe.Field())
			return msg
		},
	)
}

// validationErrors runs struct validation. Missing required fields are
// collected into one missing error built by onMissing; otherwise the first
// failing field becomes an invalid_field error with a translated reason.
func validationErrors(v any, onMissing func(fields ...string) *domain.Error) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.ErrInvalidRequest()
	}

	var missing []string
	for _, fe := range ves {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return onMissing(missing...)
	}

	fe := ves[0]
	return domain.ErrInvalidField(fe.Field(), fe.Translate(trans))
}
