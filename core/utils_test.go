package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Awa Diop", CleanString("  Awa Diop "))
	assert.Equal(t, "awa@test.com", CleanString(" Awa@Test.COM ", true))
	assert.Equal(t, "", CleanString("   "))
}

func TestValidationError(t *testing.T) {
	cause := errors.New("email taken")
	verr := NewValidationError(cause, FieldError{Field: "email", Error: "email taken"})

	assert.Contains(t, verr.Error(), "email taken")
	_, ok := errors.Cause(verr).(*ValidationError)
	assert.True(t, ok)
}

func TestShutdownError(t *testing.T) {
	err := NewShutdownError("listener gone")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "outer")))
	assert.False(t, IsShutdown(errors.New("plain")))
}
