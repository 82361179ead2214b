package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"min=1"`
	Note  string `json:"-" validate:"omitempty,max=3"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(&sample{Name: "a", Count: 1}))

	err := Struct(&sample{})
	assert.EqualError(t, err, "name required; count min")

	assert.EqualError(t, Struct(nil), "is nil")
	assert.EqualError(t, Struct("text"), "not a struct")
}
