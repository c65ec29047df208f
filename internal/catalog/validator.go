package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"booklib/internal/httpx"
)

var validate = validator.New()

// validateInput runs struct-tag validation and shapes the failures into
// field-level error details. Whitespace-only values pass the required
// tag, so the service still trims and re-checks before persisting.
func validateInput(s any) []httpx.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []httpx.ErrorDetail
	for _, fe := range err.(validator.ValidationErrors) {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, httpx.ErrorDetail{Field: field, Message: message})
	}
	return details
}
