package login

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/refdata"
)

func TestCollegeValidation(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	type form struct {
		College string `form:"college" validate:"required,college"`
	}
	colleges := []refdata.College{cuiet, cbs}

	tests := []struct {
		name     string
		colleges []refdata.College
		college  string
		wantErr  string
	}{
		{name: "known", colleges: colleges, college: "CBS"},
		{name: "unknown", colleges: colleges, college: "MIT", wantErr: "unknown college"},
		{name: "empty", colleges: colleges, college: "", wantErr: "this field is required"},
		{name: "no colleges (default)", college: "CUIET"},
		{name: "no colleges (other)", college: "CBS", wantErr: "unknown college"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.StructCtx(WithColleges(context.Background(), tt.colleges), form{College: tt.college})
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("failed! err = %v; want nil", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("failed! err = %T; want validator.ValidationErrors", err)
			}
			if got := core.TranslateFieldErrors(vErrs, translator)["college"]; got != tt.wantErr {
				t.Errorf("failed! message = %q; want %q", got, tt.wantErr)
			}
		})
	}
}
