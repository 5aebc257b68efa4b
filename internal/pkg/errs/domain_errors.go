package errs

import "errors"

// Taxonomy classes. Domain sentinels are marked with one of these so that the
// HTTP layer can map any of them to a status code with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

var ErrDatabaseOperationFailed = errors.New("database operation failed")
