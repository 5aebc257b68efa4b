package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}

type classified struct {
	err   error
	class error
}

func (e *classified) Error() string        { return e.err.Error() }
func (e *classified) Unwrap() error        { return e.err }
func (e *classified) Is(target error) bool { return target == e.class }

// Class creates a sentinel that also matches the given taxonomy class with errors.Is.
func Class(msg string, class error) error {
	return &classified{err: cr.New(msg), class: class}
}

// Classify attaches a taxonomy class to an arbitrary error.
func Classify(err error, class error) error {
	if err == nil {
		return nil
	}
	return &classified{err: err, class: class}
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// PublicMessage returns the message of the outermost classified error in the
// chain, without the wrapping context added on the way up.
func PublicMessage(err error) (string, bool) {
	var c *classified
	if cr.As(err, &c) {
		return c.err.Error(), true
	}
	return "", false
}
