package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestValidation_JoinsFieldMessages(t *testing.T) {
	err := Validation(
		FieldError{Field: "name", Message: "name too short"},
		FieldError{Field: "email", Message: "bad email"},
	)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "name too short; bad email", err.Error())
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, http.StatusBadRequest, err.Status())
}

func TestAs_WrappedError(t *testing.T) {
	base := Conflict("User already exists")
	wrapped := fmt.Errorf("create account: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Same(t, base, got)
	assert.Equal(t, http.StatusConflict, StatusOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
}

func TestAs_UnclassifiedDefaultsToInternal(t *testing.T) {
	cause := errors.New("socket closed")

	got := As(cause)
	require.NotNil(t, got)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(cause))
}

func TestNilError(t *testing.T) {
	assert.Nil(t, As(nil))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternal_ErrorIncludesCause(t *testing.T) {
	err := Internal("failed to count accounts", errors.New("timeout"))
	assert.Equal(t, "failed to count accounts: timeout", err.Error())
}
