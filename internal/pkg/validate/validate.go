package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Struct checks the validate tags on s and reports every failing field in
// one error, e.g. `invalid request: Email must satisfy "email"; Password
// must satisfy "min"`. The flattened form goes into logs and wrapped
// sentinel errors; handlers never echo it to clients verbatim.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s must satisfy %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(parts, "; "))
}
