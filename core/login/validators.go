package login

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/refdata"
)

var (
	collegeTag  = "college"
	collegeText = "unknown college"
)

type collegesCtxKey struct{}

// WithColleges returns a context the "college" validator checks against; use it with validate.StructCtx.
func WithColleges(ctx context.Context, colleges []refdata.College) context.Context {
	return context.WithValue(ctx, collegesCtxKey{}, colleges)
}

// InitValidators registers the login validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidationCtx(collegeTag, collegeValidation)
	core.RegisterCustomTranslation(validate, translator, collegeTag, collegeText)
}

// Custom Validators

// collegeValidation checks that the college is one of the colleges carried by the context.
// Without colleges in the context, only DefaultCollege is accepted.
func collegeValidation(ctx context.Context, fl validator.FieldLevel) bool {
	id := fl.Field().String()
	colleges, _ := ctx.Value(collegesCtxKey{}).([]refdata.College)
	if len(colleges) == 0 {
		return id == DefaultCollege
	}
	_, ok := refdata.FindCollege(colleges, id)
	return ok
}
