package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestMark(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := apperrors.Mark(cause, apperrors.ErrUpstream)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	require.ErrorIs(t, err, cause)
	require.Nil(t, apperrors.Mark(nil, apperrors.ErrUpstream))
}

func TestWrapf(t *testing.T) {
	err := apperrors.Wrapf(apperrors.ErrNotFound, "user %s", "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, "user abc: not found", err.Error())
	require.Nil(t, apperrors.Wrapf(nil, "ignored"))
}

func TestPublic(t *testing.T) {
	err := apperrors.Public(apperrors.ErrForbidden, "mailbox password required")
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.Equal(t, "mailbox password required", err.Error())

	wrapped := apperrors.Wrapf(err, "reading inbox")
	msg, ok := apperrors.PublicMessage(wrapped)
	require.True(t, ok)
	require.Equal(t, "mailbox password required", msg)
	require.ErrorIs(t, wrapped, apperrors.ErrForbidden)

	_, ok = apperrors.PublicMessage(apperrors.ErrInternal)
	require.False(t, ok)
}
