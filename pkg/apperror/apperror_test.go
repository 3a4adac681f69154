package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"inkbook/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfWrappedError(t *testing.T) {
	base := apperror.NotFound("artist")
	wrapped := fmt.Errorf("loading profile: %w", base)

	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(wrapped))
	assert.True(t, apperror.IsNotFound(wrapped))
	assert.Equal(t, "artist not found", apperror.MessageOf(wrapped))
}

func TestCodeOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, apperror.CodeInternal, apperror.CodeOf(err))
	assert.Equal(t, "internal server error", apperror.MessageOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := apperror.Wrap(apperror.CodeConflict, cause, "slug %q already used", "old-school")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `slug "old-school" already used: duplicate key`, err.Error())
	assert.True(t, apperror.IsConflict(err))
}
