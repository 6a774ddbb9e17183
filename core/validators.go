package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	yearCodeTag   = "yearcode"
	yearCodeText  = "invalid academic year code; expected format: 24-25"
	yearCodeRegex = regexp.MustCompile(`^\d{2}-\d{2}$`)

	quarterTag  = "quarter"
	quarterText = "invalid quarter; expected one of: Q1, Q2, Q3, Q4, Q1-Q2"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewValidator instantiates the app validator and its english translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(yearCodeTag, yearCodeValidation)
	RegisterCustomTranslation(validate, translator, yearCodeTag, yearCodeText)

	_ = validate.RegisterValidation(quarterTag, quarterValidation)
	RegisterCustomTranslation(validate, translator, quarterTag, quarterText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)

	return validate, translator
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// yearCodeValidation checks the "24-25" academic year code format.
func yearCodeValidation(fl validator.FieldLevel) bool {
	return yearCodeRegex.MatchString(fl.Field().String())
}

var validQuarters = map[string]struct{}{
	"Q1": {}, "Q2": {}, "Q3": {}, "Q4": {}, "Q1-Q2": {},
}

func quarterValidation(fl validator.FieldLevel) bool {
	_, ok := validQuarters[fl.Field().String()]
	return ok
}
