package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCloneMatchesTemplate(t *testing.T) {
	cloned := Clone(ErrConflict, "Ce numéro CP est déjà inscrit")
	wrapped := fmt.Errorf("submit: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "conflict", ErrConflict.Message)
}

func TestFieldError(t *testing.T) {
	err := FieldError("numeroCP", "Format de numéro CP invalide")
	assert.Equal(t, "numeroCP", err.Field)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Empty(t, ErrValidation.Field)
}
