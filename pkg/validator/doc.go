// Package validator validates bound form structs with go-playground/validator
// and reports failures as field-keyed, translatable messages.
//
//	type loginForm struct {
//		Username string `form:"username" validate:"required"`
//		Password string `form:"password" validate:"required,max=64"`
//	}
//
//	if err := validator.ValidateStruct(&form); err != nil {
//		ve := validator.ExtractValidationErrors(err)
//		ve.Translate(tr.TranslateMessage)
//	}
package validator
