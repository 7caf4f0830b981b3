package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so callers see the wire name of the failing field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Enum tags share their value lists with the types package.
	enums := map[string]func(string) bool{
		"priority":      func(s string) bool { return types.IsValidPriority(types.Priority(s)) },
		"visibility":    func(s string) bool { return types.IsValidVisibility(types.Visibility(s)) },
		"mime_category": func(s string) bool { return types.IsValidMimeCategory(types.MimeCategory(s)) },
	}
	for tag, valid := range enums {
		valid := valid
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
	return v
}

// Struct validates s and returns the first failing field as a ValidationError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("request", err.Error())
	}

	fe := verrs[0]
	return apperr.Validation(fieldPath(fe), reason(fe))
}

// Required rejects values that are empty once surrounding whitespace is trimmed.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(field, "must not be blank")
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "CreateEvidenceRequest.title"; drop the struct name.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param + " characters"
	case "gte":
		return "must be greater than or equal to " + param
	case "oneof":
		return "must be one of [" + param + "]"
	case "url":
		return "must be a valid URL"
	case "priority", "visibility", "mime_category":
		return "is not a known " + strings.ReplaceAll(fe.Tag(), "_", " ")
	default:
		return "is invalid"
	}
}
