package controllers

import (
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &requestValidator{validate: validate, trans: trans}
}

// Struct returns nil or one error listing every translated validation message.
func (v *requestValidator) Struct(request any) error {
	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}
	vv := translateError(err, v.trans)
	vvString := []string{}
	for _, e := range vv {
		vvString = append(vvString, e.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}
