package checker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidModel is matched by every *InvalidModelError.
var ErrInvalidModel = errors.New("checker: invalid model")

// InvalidModelError is returned when a model fails validation or has
// dependency cycles. Such a model has no evaluation order.
type InvalidModelError struct {
	Model    string
	Problems []error
}

func (e *InvalidModelError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("model %q is invalid: %s", e.Model, strings.Join(msgs, "; "))
}

// Is makes errors.Is(err, ErrInvalidModel) true.
func (e *InvalidModelError) Is(target error) bool {
	return target == ErrInvalidModel
}
