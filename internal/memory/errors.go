package memory

import "fmt"

// DuplicateContentError reports that a save or content update collided with
// an existing record's content hash. It carries the colliding record's id so
// the caller can redirect to an update instead. Never retried by the store.
type DuplicateContentError struct {
	ExistingID string
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("duplicate content: record %s already holds this content", e.ExistingID)
}
