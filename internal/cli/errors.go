package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// declinedError is returned when the user answers no to a confirmation prompt.
type declinedError struct {
	what string
}

func (e declinedError) Error() string {
	return fmt.Sprintf("%s: not confirmed", e.what)
}

// notificationError carries an error toast out of a headless command.
type notificationError struct {
	message string
	cause   error
}

func (e notificationError) Error() string { return e.message }

func (e notificationError) Unwrap() error { return e.cause }
