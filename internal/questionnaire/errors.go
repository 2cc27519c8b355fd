package questionnaire

import (
	"errors"
	"fmt"
)

// ErrCatalogNotLoaded is returned when questions are requested before the
// category list has loaded.
var ErrCatalogNotLoaded = errors.New("categories not loaded")

// NotFoundError reports an unknown category or question id.
type NotFoundError struct {
	Kind string // "category" or "question"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}
