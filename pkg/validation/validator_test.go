package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Gin's binding engine validates on the "binding" tag.
type sampleForm struct {
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,pwd"`
	Locations []string `json:"locations" binding:"min=1,max=2"`
	Status    string   `json:"status" binding:"oneof=searching matched found closed"`
}

func TestToDetailsFieldMessages(t *testing.T) {
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(sampleForm{
		Email:     "not-an-email",
		Password:  "short",
		Locations: []string{"a", "b", "c"},
		Status:    "open",
	})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "min length 8", details["password"])
	assert.Equal(t, "must have at most 2 entries", details["locations"])
	assert.Equal(t, "must be one of: searching, matched, found, closed", details["status"])
}

func TestToDetailsNonValidationError(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	details := ToDetails(assert.AnError)
	assert.Equal(t, "invalid payload", details["payload"])
}
