package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/nbaobe/portal/apps/api/echo"
	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/session"
	"github.com/nbaobe/portal/core/user"
	"github.com/nbaobe/portal/storage/database/inmem"
	"github.com/nbaobe/portal/storage/fixtures"
	"github.com/nbaobe/portal/tests"
)

const cookieName = "portal_token"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// setup returns a server backed by an in-memory DB seeded with the demo data.
func setup(t *testing.T, configure ...func(conf *core.Config)) *Server {
	srv, _ := setupWithServices(t, configure...)
	return srv
}

// setupWithServices is setup, also returning the services behind the server.
func setupWithServices(t *testing.T, configure ...func(conf *core.Config)) (*Server, testutil.Services) {
	conf := core.NewTestConfig()
	for _, fn := range configure {
		fn(conf)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	login.InitValidators(validate, translator)

	svcs := testutil.NewServices()
	demo, err := fixtures.Demo()
	if err != nil {
		t.Fatalf("fixtures.Demo() failed: %v", err)
	}
	if _, err = fixtures.Seed(context.Background(), demo, validate, svcs.RefSvc, svcs.UserSvc); err != nil {
		t.Fatalf("fixtures.Seed() failed: %v", err)
	}

	sessSvc := session.NewService(svcs.UserSvc, svcs.RefSvc, inmemdb.NewSessionStore(svcs.DB), core.NewNopLogger(),
		session.WithTTL(conf.Server.JWTExpirationDelta))
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         core.NewNopLogger(),
		UserSvc:        svcs.UserSvc,
		RefSvc:         svcs.RefSvc,
		SessionSvc:     sessSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return srv, svcs
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name      string
	method    string
	path      string
	body      []byte
	form      url.Values
	token     string
	cookie    string
	wantCode  int
	wantData  []byte
	wantBody  []string // substrings of an HTML response
	wantRedir string
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newPageRequest builds a browser request: an url-encoded form and the session cookie, if any.
func newPageRequest(method, path, cookie string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	return req, httptest.NewRecorder()
}

func serve(srv *Server, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	var req *http.Request
	var rec *httptest.ResponseRecorder
	if strings.HasPrefix(tt.path, "/api") {
		req, rec = newAuthRequest(method, tt.path, tt.token, tt.body)
	} else {
		req, rec = newPageRequest(method, tt.path, tt.cookie, tt.form)
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	if c := responseCookie(rec); c != nil {
		return c.Value
	}
	return ""
}

// responseCookie returns the session cookie set by the response, if any.
func responseCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

// loginToken logs in through the API and returns the issued token.
func loginToken(t *testing.T, srv *Server, body []byte) string {
	req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("loginToken() failed: code = %v; body %v", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("loginToken() failed: %v", err)
	}
	return resp.Token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkCodeAndPage(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantRedir != "" {
		assert.Equal(t, tt.wantRedir, rec.Header().Get("Location"))
	}
	for _, s := range tt.wantBody {
		if !strings.Contains(rec.Body.String(), s) {
			t.Errorf("failed! body does not contain %q", s)
		}
	}
}
