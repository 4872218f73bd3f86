package repositories

import (
	"errors"
	"fmt"
	"strings"
)

// Store-level precondition errors. Handlers check preconditions before
// calling the stores, but the stores reject these on their own as well so
// no caller can corrupt the graph.
var (
	ErrSelfFollow       = errors.New("users cannot follow themselves")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrNotFound         = errors.New("record not found")
)

// PartialCascadeError reports that one or more sub-operations of a cascade
// failed. The cascade still completes best-effort: already-finished steps
// are not rolled back and the follow record is removed regardless, so a
// user deletion is never permanently blocked by a bad edge.
type PartialCascadeError struct {
	Errs []error
}

func (e *PartialCascadeError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("cascade completed with %d failed step(s): %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *PartialCascadeError) Unwrap() []error {
	return e.Errs
}
