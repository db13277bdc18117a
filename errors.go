package sift

import "github.com/pkg/errors"

// Mutation errors; every operation fails with one of these, wrapped with
// context, before any state changes.
var (
	// ErrNotFound means a referenced id does not exist in the tree.
	ErrNotFound = errors.New("not found")

	// ErrWrongKind means an id referenced a condition where a group was
	// expected, or the other way around.
	ErrWrongKind = errors.New("wrong kind")

	// ErrInvalidOperation means a structural violation: touching the root
	// where disallowed, or a cycle-forming move or group.
	ErrInvalidOperation = errors.New("invalid operation")
)

func errNotFound(id string) error {
	return errors.WithMessagef(ErrNotFound, "no node with id %s", id)
}

func errWrongKind(id, want string) error {
	return errors.WithMessagef(ErrWrongKind, "node %s is not a %s", id, want)
}

func errInvalid(format string, args ...any) error {
	return errors.WithMessagef(ErrInvalidOperation, format, args...)
}
