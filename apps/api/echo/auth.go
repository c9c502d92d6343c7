package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/session"
)

const (
	contextTokenKey   = "userToken"
	contextSessionKey = "session"
	loginPath         = "/login"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	SessionID string `json:"sid"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
}

// tokenizer signs and verifies session tokens.
type tokenizer struct {
	issuer     string
	key        []byte
	expiration time.Duration
	cookieName string
	secure     bool
}

func newTokenizer(conf *core.Config) tokenizer {
	return tokenizer{
		issuer:     conf.AppName,
		key:        []byte(conf.SecretKey),
		expiration: conf.Server.JWTExpirationDelta,
		cookieName: conf.Server.CookieName,
		secure:     !conf.Debug,
	}
}

func (tk tokenizer) claims(sess session.Session) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    tk.issuer,
			Subject:   sess.UserID,
			ExpiresAt: now.Add(tk.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		SessionID: sess.ID,
		Username:  sess.Username,
		Role:      sess.Role,
	}
}

// generate returns a signed JWT token string for the session.
func (tk tokenizer) generate(sess session.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), tk.claims(sess))
	ss, err := token.SignedString(tk.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// apiJWT authenticates API requests with an `Authorization: Bearer` token.
func (tk tokenizer) apiJWT() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    tk.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	})
}

// pageJWT authenticates pages with the session cookie; anonymous visitors are sent to the login page.
func (tk tokenizer) pageJWT() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    tk.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		TokenLookup:   "cookie:" + tk.cookieName,
		ErrorHandlerWithContext: func(_ error, ctx echo.Context) error {
			return ctx.Redirect(http.StatusSeeOther, loginPath)
		},
	})
}

func (tk tokenizer) setCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     tk.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(tk.expiration),
		HttpOnly: true,
		Secure:   tk.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (tk tokenizer) clearCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     tk.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   tk.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// parseCookie returns the claims of a valid session cookie.
func (tk tokenizer) parseCookie(ctx echo.Context) (*Claims, bool) {
	cookie, err := ctx.Cookie(tk.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return tk.key, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// sessionMiddleware loads the session named by the token claims.
// onMissing handles requests whose session has ended.
func sessionMiddleware(svc *session.Service, onMissing echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return onMissing(ctx)
			}
			sess, err := svc.Get(ctx.Request().Context(), claims.SessionID)
			if err != nil {
				if errors.Cause(err) == session.ErrNotFound {
					return onMissing(ctx)
				}
				return errors.Wrap(err, "getting session")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}
