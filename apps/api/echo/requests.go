package echoapi

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
)

type (
	LoginForm struct {
		Username string `form:"username" json:"username" validate:"required"`
		Password string `form:"password" json:"password" validate:"required"`
		College  string `form:"college" json:"college" validate:"required,college"`
	}

	QuickLoginForm struct {
		UserID string `form:"quick_user"`
	}

	QuickLoginRequest struct {
		Shortcut string `json:"shortcut" validate:"required_without=UserID"`
		UserID   string `json:"user_id"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

// Validate checks the form; the college must be one of colleges.
func (lf *LoginForm) Validate(ctx context.Context, validate *validator.Validate, colleges []refdata.College) error {
	lf.College = core.CleanString(lf.College)
	return validate.StructCtx(login.WithColleges(ctx, colleges), lf)
}

func (qr *QuickLoginRequest) Validate(validate *validator.Validate) error {
	qr.Shortcut = core.CleanString(qr.Shortcut, true /* lower */)
	qr.UserID = core.CleanString(qr.UserID)
	return validate.Struct(qr)
}
