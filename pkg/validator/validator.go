package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

var validate = validator.New()

func init() {
	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
}

// RegisterStringRule adds a validate tag that accepts a string field when ok
// returns true. Register before the first ValidateStruct using the tag.
func RegisterStringRule(tag string, ok func(string) bool) error {
	return validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid"}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
