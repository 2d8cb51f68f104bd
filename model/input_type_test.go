package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputTypeValid(t *testing.T) {
	for _, it := range []InputType{
		InputText, InputNumber, InputChoice, InputMultichoice, InputRange,
		InputRating, InputDatetime, InputPoint, InputLine, InputPolygon,
		InputImage, InputTextLine, InputHTML,
	} {
		assert.True(t, it.Valid(), string(it))
	}
	assert.False(t, InputType("smell").Valid())
	assert.False(t, InputType("").Valid())
}

func TestInputTypeRequiresChoices(t *testing.T) {
	assert.True(t, InputChoice.RequiresChoices())
	assert.True(t, InputMultichoice.RequiresChoices())
	assert.True(t, InputRange.RequiresChoices())
	assert.True(t, InputRating.RequiresChoices())
	assert.False(t, InputText.RequiresChoices())
	assert.False(t, InputPoint.RequiresChoices())
}
