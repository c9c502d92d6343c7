package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nbaobe/portal/core/info"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/session"
	"github.com/nbaobe/portal/core/user"
)

type apiHandlers struct {
	pages loginPages
}

func registerAPI(g *echo.Group, deps ServerDeps, tokens tokenizer) {
	h := apiHandlers{pages: loginPages{deps: deps, tokens: tokens}}
	onMissing := func(echo.Context) error { return errUnauthorized }

	g.POST("/auth/login", h.login)
	g.POST("/auth/quick-login", h.quickLogin, h.pages.quickLoginEnabled)

	g.GET("/colleges", h.colleges)
	g.GET("/quick-login/users", h.quickLoginUsers, h.pages.quickLoginEnabled)
	g.GET("/info", h.info)

	g.GET("/session", h.session, tokens.apiJWT(), sessionMiddleware(deps.SessionSvc, onMissing))
}

func (h apiHandlers) login(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var form LoginForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to LoginForm")
	}

	screen, sctx, nav, err := h.pages.newScreen(reqCtx)
	if err != nil {
		return err
	}
	if form.College == "" {
		form.College = screen.College()
	}
	if err = form.Validate(reqCtx, h.pages.deps.Validate, sctx.Data().Colleges); err != nil {
		return err
	}

	screen.SetUsername(form.Username)
	screen.SetPassword(form.Password)
	if err = screen.SetCollege(form.College); err != nil {
		return errors.Wrap(err, "selecting college")
	}
	return h.finish(ctx, screen.Submit(reqCtx), screen, sctx, nav)
}

func (h apiHandlers) quickLogin(ctx echo.Context) error {
	var req QuickLoginRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to QuickLoginRequest")
	}
	if err := req.Validate(h.pages.deps.Validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	screen, sctx, nav, err := h.pages.newScreen(reqCtx)
	if err != nil {
		return err
	}

	var status login.Status
	if req.Shortcut != "" {
		sc, ok := login.ShortcutByKey(req.Shortcut)
		if !ok {
			return errHttpNotFound
		}
		status = screen.QuickLoginShortcut(reqCtx, sc)
	} else {
		status = screen.SelectQuickLoginUser(reqCtx, req.UserID)
	}
	return h.finish(ctx, status, screen, sctx, nav)
}

func (h apiHandlers) colleges(ctx echo.Context) error {
	colleges, err := h.pages.deps.RefSvc.Colleges(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying colleges")
	}
	return ctx.JSON(http.StatusOK, colleges)
}

func (h apiHandlers) quickLoginUsers(ctx echo.Context) error {
	users, err := h.pages.deps.UserSvc.Search(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "searching users")
	}

	opts := make([]user.QuickLoginOption, 0, len(users))
	for _, usr := range users {
		opts = append(opts, usr.QuickLoginOption())
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (h apiHandlers) info(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, info.New(nil))
}

func (h apiHandlers) session(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// finish answers with a token for a successful attempt, or with the screen's error message.
func (h apiHandlers) finish(ctx echo.Context, status login.Status, screen *login.Screen, sctx *session.Context, nav *redirectNavigator) error {
	if status != login.StatusSuccess {
		return ctx.JSON(failureCode(screen), echo.Map{"error": screen.Error()})
	}

	sess, err := h.pages.deps.SessionSvc.Commit(ctx.Request().Context(), sctx)
	if err != nil {
		return errors.Wrap(err, "committing session")
	}
	token, err := h.pages.tokens.generate(sess)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, nav.path)
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}
