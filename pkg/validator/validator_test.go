package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Colour string `json:"colour" validate:"required,primary_colour"`
	PageID uint   `json:"pageId" validate:"required,gt=0"`
	Secret string `json:"-" validate:"omitempty,min=3"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, RegisterStringRule("primary_colour", func(v string) bool {
		switch strings.ToLower(v) {
		case "red", "green", "blue":
			return true
		}
		return false
	}))

	assert.Empty(t, ValidateStruct(&sample{Colour: "Blue", PageID: 3}))

	errs := ValidateStruct(&sample{Colour: "mauve", PageID: 0})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "colour", errs[0].FailedField)
		assert.Equal(t, "primary_colour", errs[0].Tag)
		assert.Equal(t, "pageId", errs[1].FailedField)
		assert.Equal(t, "required", errs[1].Tag)
	}
}
