package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-star/internal/domain"
)

// RegisterRunValidators registers the custom validation functions that
// RunConfig struct tags reference: semver and staroption.
// RegisterRunValidators returns an error if any registration fails.
func RegisterRunValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := v.RegisterValidation("staroption", validateStarOption); err != nil {
		return fmt.Errorf("failed to register staroption validator: %w", err)
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	if err != nil || n != 3 || major < 0 || minor < 0 || patch < 0 {
		return false
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch) == value
}

// validateStarOption validates that a string names a tally option.
func validateStarOption(fl validator.FieldLevel) bool {
	_, err := domain.ParseOption(fl.Field().String())
	return err == nil
}
