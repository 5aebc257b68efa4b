//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"canyon-booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestClass(t *testing.T) {
	errSessionGone := errs.Class("session gone", errs.ErrNotFound)

	wrapped := errs.Wrap(errSessionGone, "loading session")

	assert.True(t, errors.Is(wrapped, errSessionGone))
	assert.True(t, errors.Is(wrapped, errs.ErrNotFound))
	assert.False(t, errors.Is(wrapped, errs.ErrConflict))
}

func TestMark(t *testing.T) {
	base := errors.New("boom")
	marked := errs.Mark(base, errs.ErrConflict)

	assert.True(t, errs.Is(marked, errs.ErrConflict))
	assert.Equal(t, errs.ErrConflict, errs.Mark(nil, errs.ErrConflict))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, errs.Classify(nil, errs.ErrConflict))

	base := errors.New("duplicate key")
	classified := errs.Classify(base, errs.ErrConflict)
	assert.True(t, errors.Is(classified, errs.ErrConflict))
	assert.True(t, errors.Is(classified, base))
	assert.Equal(t, "duplicate key", classified.Error())
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 3))

	lines := errs.ExtractStackLines(errs.New("boom"), 2)
	assert.Len(t, lines, 2)
	assert.Equal(t, "boom", lines[0])
}

func TestPublicMessage(t *testing.T) {
	errGone := errs.Class("session gone", errs.ErrNotFound)

	msg, ok := errs.PublicMessage(errs.Wrapf(errGone, "loading session %d", 7))
	assert.True(t, ok)
	assert.Equal(t, "session gone", msg)

	_, ok = errs.PublicMessage(errors.New("boom"))
	assert.False(t, ok)
}
