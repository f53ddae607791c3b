package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("load role: %w", NotFound("role"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, errors.Is(err, NotFound("anything")))
	assert.False(t, errors.Is(err, Conflict("x")))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(KindInternal, cause, "internal error")

	assert.Equal(t, "Internal: internal error: db down", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NotFound: member not found", NotFound("member").Error())
}
