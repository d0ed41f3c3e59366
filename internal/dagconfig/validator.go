package dagconfig

import (
	"sync"

	"github.com/go-playground/validator/v10"

	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// validatorInstance lazily builds the package's validator.Validate,
// registering the "ctype" rule once, mirroring the teacher's
// validatorInstance sync.Once singleton.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("ctype", func(fl validator.FieldLevel) bool {
			_, err := ParseType(fl.Field().String())
			return err == nil
		})
		validatorInst = v
	})
	return validatorInst
}

// ValidateDocument runs struct validation over doc, including the "ctype"
// rule on every type expression it carries.
func ValidateDocument(doc *Document) error {
	if err := validatorInstance().Struct(doc); err != nil {
		return cerrors.NewConfigurationError("dagconfig: " + err.Error())
	}
	return nil
}
