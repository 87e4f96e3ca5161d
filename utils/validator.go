package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	onceValidate sync.Once
)

// GetValidator returns the process-wide validator the handlers run request
// structs through. Validators cache struct metadata, so sharing one
// instance is both safe and cheaper than constructing per handler.
func GetValidator() *validator.Validate {
	onceValidate.Do(func() {
		validate = validator.New()
	})
	return validate
}
