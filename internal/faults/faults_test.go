package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeNotFound, "tray %q not found", "abc")
	assert.Equal(t, `NOT_FOUND: tray "abc" not found`, err.Error())

	wrapped := Wrap(ErrCodeGeneration, errors.New("boom"), "tray %s", "A")
	assert.Equal(t, "GENERATION: tray A: boom", wrapped.Error())
}

func TestValidationCarriesDetails(t *testing.T) {
	err := Validation([]string{"too wide", "too deep"})
	assert.Contains(t, err.Error(), "too wide; too deep")
	assert.Equal(t, []string{"too wide", "too deep"}, Details(err))
}

func TestIsAndGetCodeThroughWrapping(t *testing.T) {
	base := New(ErrCodeInvalidShapeRef, "missing shape")
	chained := fmt.Errorf("layout: %w", base)

	assert.True(t, Is(chained, ErrCodeInvalidShapeRef))
	assert.False(t, Is(chained, ErrCodeValidation))
	assert.Equal(t, ErrCodeInvalidShapeRef, GetCode(chained))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
	assert.Nil(t, Details(errors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(ErrCodeGeneration, cause, "ctx")
	assert.True(t, errors.Is(err, cause))
}
