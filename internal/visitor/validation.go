package visitor

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const requiredText = "this field is required"

// inputValidator validates request structs and renders field errors in
// English, using JSON tag names for fields.
type inputValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newInputValidator() *inputValidator {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterTranslation("required", translator,
		func(t ut.Translator) error { return t.Add("required", requiredText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("required", fe.Field())
			return s
		},
	)

	return &inputValidator{validate: validate, translator: translator}
}

// Struct validates s and converts failures into a *ValidationError.
func (v *inputValidator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return &ValidationError{Fields: fields}
}
