package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, translator)
}

// DecodeAndValidate parses a JSON request body into dst and runs struct
// validation. The returned messages are ready for the error envelope.
func DecodeAndValidate(r *http.Request, dst any) []string {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return []string{"invalid request body"}
	}
	return Validate(dst)
}

// Validate runs struct validation and returns translated messages, or nil
// when the value is valid.
func Validate(dst any) []string {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(verrs))
	for _, ferr := range verrs {
		messages = append(messages, ferr.Translate(translator))
	}
	return messages
}
