package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportFailure("tickets.list", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "tickets.list failed")
	require.True(t, HasCode(err, CodeTransportFailure))
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	inner := NewCommentCreationFailure("9001", errors.New("rejected"))
	wrapped := fmt.Errorf("replaying timeline: %w", inner)

	require.True(t, HasCode(wrapped, CodeCommentCreationFailure))
	require.False(t, HasCode(wrapped, CodeTransportFailure))
}

func TestToMigrationError_ForeignError(t *testing.T) {
	err := ToMigrationError(errors.New("boom"))

	require.NotNil(t, err)
	require.Equal(t, CodeTicketProcessingFailure, err.Code)
}

func TestToMigrationError_Nil(t *testing.T) {
	require.Nil(t, ToMigrationError(nil))
}

func TestMalformedDataCarriesDetails(t *testing.T) {
	err := NewMalformedData("created time", map[string]any{"value": "last Tuesday"})

	migErr := ToMigrationError(err)
	require.Equal(t, CodeMalformedData, migErr.Code)
	require.Equal(t, "last Tuesday", migErr.Details["value"])
}
