package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/info"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/session"
	"github.com/nbaobe/portal/core/user"
)

type (
	loginPages struct {
		deps   ServerDeps
		tokens tokenizer
	}

	loginView struct {
		AppName     string
		Username    string
		College     string
		Colleges    []refdata.College
		Error       string
		FieldErrors map[string]string

		QuickLoginEnabled bool
		Shortcuts         []login.Shortcut
		Options           []user.QuickLoginOption
		QuickSelect       string
		Placeholder       string

		Info *info.Modal
	}

	homeView struct {
		AppName string
		Session session.Session
	}

	errorView struct {
		Code    int
		Status  string
		Message interface{}
	}

	// redirectNavigator turns the screen's navigation into the redirect sent back to the browser.
	redirectNavigator struct {
		path string
	}
)

func (nav *redirectNavigator) Navigate(path string) { nav.path = path }

func registerLoginPages(e *echo.Echo, deps ServerDeps, tokens tokenizer) {
	p := loginPages{deps: deps, tokens: tokens}

	e.GET(loginPath, p.loginPage)
	e.POST(loginPath, p.submit)

	e.POST(loginPath+"/quick", p.selectUser, p.quickLoginEnabled)
	e.POST(loginPath+"/quick/:shortcut", p.shortcut, p.quickLoginEnabled)

	e.GET(login.HomePath, p.home, tokens.pageJWT(), sessionMiddleware(deps.SessionSvc, p.toLogin))
	e.POST("/logout", p.logout)
}

// Middlewares

func (p loginPages) quickLoginEnabled(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !p.deps.Conf.Portal.QuickLoginEnabled {
			return errQuickLoginDisabled
		}
		return next(ctx)
	}
}

// Handlers

func (p loginPages) loginPage(ctx echo.Context) error {
	if claims, ok := p.tokens.parseCookie(ctx); ok {
		if _, err := p.deps.SessionSvc.Get(ctx.Request().Context(), claims.SessionID); err == nil {
			return ctx.Redirect(http.StatusSeeOther, login.HomePath)
		}
	}

	screen, _, _, err := p.newScreen(ctx.Request().Context())
	if err != nil {
		return err
	}
	if ctx.QueryParam("info") == "1" {
		screen.OpenInfo()
	}
	return p.render(ctx, http.StatusOK, screen, nil)
}

func (p loginPages) submit(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var form LoginForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to LoginForm")
	}

	screen, sctx, nav, err := p.newScreen(reqCtx)
	if err != nil {
		return err
	}
	screen.SetUsername(form.Username)
	screen.SetPassword(form.Password)

	if err = form.Validate(reqCtx, p.deps.Validate, sctx.Data().Colleges); err != nil {
		vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
		if !ok {
			return err
		}
		return p.render(ctx, http.StatusBadRequest, screen, core.TranslateFieldErrors(vErrs, p.deps.Translator))
	}
	if err = screen.SetCollege(form.College); err != nil {
		return p.render(ctx, http.StatusBadRequest, screen, map[string]string{"college": err.Error()})
	}

	return p.finish(ctx, screen.Submit(reqCtx), screen, sctx, nav)
}

func (p loginPages) shortcut(ctx echo.Context) error {
	sc, ok := login.ShortcutByKey(ctx.Param("shortcut"))
	if !ok {
		return errHttpNotFound
	}

	reqCtx := ctx.Request().Context()
	screen, sctx, nav, err := p.newScreen(reqCtx)
	if err != nil {
		return err
	}
	return p.finish(ctx, screen.QuickLoginShortcut(reqCtx, sc), screen, sctx, nav)
}

func (p loginPages) selectUser(ctx echo.Context) error {
	var form QuickLoginForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to QuickLoginForm")
	}

	reqCtx := ctx.Request().Context()
	screen, sctx, nav, err := p.newScreen(reqCtx)
	if err != nil {
		return err
	}
	status := screen.SelectQuickLoginUser(reqCtx, form.UserID)
	if status == login.StatusIdle { // placeholder selected
		return ctx.Redirect(http.StatusSeeOther, loginPath)
	}
	return p.finish(ctx, status, screen, sctx, nav)
}

func (p loginPages) home(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return p.toLogin(ctx)
	}
	return ctx.Render(http.StatusOK, "home", homeView{AppName: p.deps.Conf.AppName, Session: sess})
}

func (p loginPages) logout(ctx echo.Context) error {
	if claims, ok := p.tokens.parseCookie(ctx); ok {
		if err := p.deps.SessionSvc.End(ctx.Request().Context(), claims.SessionID); err != nil {
			return errors.Wrap(err, "ending session")
		}
	}
	p.tokens.clearCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, loginPath)
}

func (p loginPages) toLogin(ctx echo.Context) error {
	p.tokens.clearCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, loginPath)
}

// Helpers

func (p loginPages) newScreen(ctx context.Context) (*login.Screen, *session.Context, *redirectNavigator, error) {
	sctx, err := p.deps.SessionSvc.NewContext(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "loading login data")
	}
	nav := new(redirectNavigator)
	return login.NewScreen(sctx, nav, screenOptions(p.deps.Conf)...), sctx, nav, nil
}

// finish commits the session of a successful attempt, or renders the screen with its error.
func (p loginPages) finish(ctx echo.Context, status login.Status, screen *login.Screen, sctx *session.Context, nav *redirectNavigator) error {
	if status != login.StatusSuccess {
		return p.render(ctx, failureCode(screen), screen, nil)
	}

	sess, err := p.deps.SessionSvc.Commit(ctx.Request().Context(), sctx)
	if err != nil {
		return errors.Wrap(err, "committing session")
	}
	token, err := p.tokens.generate(sess)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	p.tokens.setCookie(ctx, token)
	return ctx.Redirect(http.StatusSeeOther, nav.path)
}

func (p loginPages) render(ctx echo.Context, code int, screen *login.Screen, fieldErrors map[string]string) error {
	return ctx.Render(code, "login", loginView{
		AppName:           p.deps.Conf.AppName,
		Username:          screen.Username(),
		College:           screen.College(),
		Colleges:          screen.Colleges(),
		Error:             screen.Error(),
		FieldErrors:       fieldErrors,
		QuickLoginEnabled: p.deps.Conf.Portal.QuickLoginEnabled,
		Shortcuts:         login.Shortcuts,
		Options:           screen.QuickLoginOptions(),
		QuickSelect:       screen.QuickSelect(),
		Placeholder:       login.QuickSelectPlaceholder,
		Info:              screen.InfoModal(),
	})
}

func screenOptions(conf *core.Config) []login.Option {
	return []login.Option{
		login.WithDefaultCollege(conf.Portal.DefaultCollege),
		login.WithQuickLoginCollege(conf.Portal.QuickLoginCollege),
		login.WithPostLoginHooks(login.DefaultPostLoginHooks(conf.Portal.DemoBatch)),
	}
}

func failureCode(screen *login.Screen) int {
	switch screen.Error() {
	case login.MsgUnavailable:
		return http.StatusServiceUnavailable
	case login.MsgUserNotFound:
		return http.StatusNotFound
	case "":
		return http.StatusConflict // still submitting
	default:
		return http.StatusUnauthorized
	}
}
