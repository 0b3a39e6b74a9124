package core

import "fmt"

// ErrNotFound is returned when reference validation fails within transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError is returned when an operation would violate a uniqueness
// invariant (duplicate email, second startup per owner, second partner
// profile per user).
type ConflictError struct {
	Entity EntityType
	Field  string
	Value  string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

// StateTransitionError is returned when an application-status transition is
// not permitted by the transition table.
type StateTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e StateTransitionError) Error() string {
	return fmt.Sprintf("application transition %s -> %s not permitted", e.From, e.To)
}
