package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindAuth, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Validation("after", "after must be a number"))
	e := As(wrapped)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, "after", e.Path)
	assert.True(t, IsKind(wrapped, KindValidation))

	plain := errors.New("connection refused")
	e = As(plain)
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, MsgInternal, e.Message)
	assert.ErrorIs(t, e, plain)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "room: room is required", Validation("room", "room is required").Error())
	assert.Equal(t, MsgUnauthenticated, Unauthenticated().Error())
}
