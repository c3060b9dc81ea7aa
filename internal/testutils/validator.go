package testutils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewTestValidator creates a validator that reports fields by their YAML
// names, matching what run-config authors see in their files.
func NewTestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
