package book

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/httpx"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report failures under the form field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
}

func validateStruct(s interface{}) []httpx.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []httpx.ErrorDetail{{Field: "body", Message: "invalid input"}}
	}

	var details []httpx.ErrorDetail
	for _, e := range verrs {
		field := e.Field()

		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, e.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", field, e.Param())
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, httpx.ErrorDetail{
			Field:   field,
			Message: message,
		})
	}

	return details
}
