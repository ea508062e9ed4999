// Package schemavalidator holds the process-wide struct validator and the
// custom tags shared by config and tool argument structs.
package schemavalidator

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once            sync.Once
	schemaValidator *validator.Validate
)

// V returns the shared validator with all custom tags registered.
func V() *validator.Validate {
	once.Do(func() {
		schemaValidator = validator.New(validator.WithRequiredStructEnabled())
		schemaValidator.RegisterTagNameFunc(fieldName)
		registerValidators(schemaValidator)
	})
	return schemaValidator
}
