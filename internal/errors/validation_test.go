package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title        string `validate:"required,max=10"`
	PassingScore int    `validate:"min=0,max=100"`
}

func TestToValidationErrors(t *testing.T) {
	v := validator.New()

	err := v.Struct(&sampleRequest{Title: "", PassingScore: 150})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)

	assert.Equal(t, "Title", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "required", errs[0].Rule)

	assert.Equal(t, "PassingScore", errs[1].Field)
	assert.Equal(t, "must be at most 100", errs[1].Message)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(assert.AnError)
	assert.Empty(t, errs)
}

func TestValidationErrorsErrorString(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())

	one := ValidationErrors{{Field: "points", Message: "must be at least 1"}}
	assert.Equal(t, "validation failed: points must be at least 1", one.Error())

	two := append(one, ValidationError{Field: "title", Message: "is required"})
	assert.Equal(t, "validation failed: 2 field errors", two.Error())
}
