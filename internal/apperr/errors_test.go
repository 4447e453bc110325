package apperr_test

import (
	"errors"
	"testing"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{apperr.Validation("bad"), apperr.ErrValidation},
		{apperr.Conflict("dup"), apperr.ErrConflict},
		{apperr.Auth("nope"), apperr.ErrAuth},
		{apperr.NotFound("gone"), apperr.ErrNotFound},
		{apperr.EmptyResult("empty"), apperr.ErrEmptyResult},
		{apperr.Storage("notes.list", errors.New("conn reset")), apperr.ErrStorage},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind)
	}

	assert.NotErrorIs(t, apperr.Validation("bad"), apperr.ErrNotFound)
}

func TestStorageHidesCause(t *testing.T) {
	cause := errors.New("password authentication failed for user notes")
	err := apperr.Storage("users.create", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "storage error", err.Error())

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "users.create", appErr.Op())
	assert.Equal(t, cause, appErr.Cause())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Passwords do not match.", apperr.Message(apperr.Validation("Passwords do not match."), "fallback"))
	assert.Equal(t, "fallback", apperr.Message(errors.New("raw"), "fallback"))
}
