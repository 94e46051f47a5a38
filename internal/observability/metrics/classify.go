package metrics

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/debate-club/portal/internal/errors"
)

// Classify returns a low-cardinality label for err.
// Application errors use their code; anything else is named after its innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return "ok"
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
