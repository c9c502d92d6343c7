package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type form struct {
		Username string `form:"username" validate:"required,alphanum_"`
		Password string `json:"password" validate:"required"`
	}

	tests := []struct {
		name string
		data form
		want map[string]string
	}{
		{name: "valid", data: form{Username: "pc_ece", Password: "x"}},
		{
			name: "required fields",
			want: map[string]string{"username": "this field is required", "password": "this field is required"},
		},
		{
			name: "invalid username",
			data: form{Username: "PC ECE", Password: "x"},
			want: map[string]string{"username": alphaNumUnderText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			assert.Equal(t, tt.want, TranslateFieldErrors(vErrs, translator))
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "PC_ece", CleanString("  PC_ece \t"))
	assert.Equal(t, "pc_ece", CleanString("  PC_ece \t", true))
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "", ValidationError{}.Error())
	assert.Equal(t, "username: taken", ValidationError{Fields: []FieldError{{Field: "username", Error: "taken"}}}.Error())
	assert.True(t, IsShutdown(NewShutdownError("bye")))
}
