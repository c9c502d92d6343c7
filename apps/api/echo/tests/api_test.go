package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/nbaobe/portal/apps/api/echo"
	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/info"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/session"
	"github.com/nbaobe/portal/core/user"
	"github.com/nbaobe/portal/storage/database/inmem"
	"github.com/nbaobe/portal/tests"
)

func getSession(t *testing.T, srv *Server, token string) session.Session {
	req, rec := newAuthRequest(http.MethodGet, "/api/session", token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("getSession() failed: code = %v; body %v", rec.Code, rec.Body.String())
	}
	var sess session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("getSession() failed: %v", err)
	}
	return sess
}

func Test_apiHandlers_login(t *testing.T) {
	srv := setup(t)

	type loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
		College  string `json:"college,omitempty"`
	}

	tests := []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth/login",
			body:     marchallObj(t, loginData{Username: "admin", Password: "x", College: "CUIET"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: login.MsgInvalidCredentials}),
		},
		{
			name: "unknown college", method: http.MethodPost, path: "/api/auth/login",
			body:     marchallObj(t, loginData{Username: "admin", Password: "password", College: "MIT"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"college": "unknown college"}),
		},
		{
			name: "missing credentials", method: http.MethodPost, path: "/api/auth/login",
			body:     marchallObj(t, loginData{College: "CUIET"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(srv, tt))
		})
	}

	t.Run("success", func(t *testing.T) {
		token := loginToken(t, srv, marchallObj(t, loginData{Username: "admin", Password: "password", College: "CBS"}))
		sess := getSession(t, srv, token)
		assert.Equal(t, "U_ADMIN", sess.UserID)
		assert.Equal(t, "admin", sess.Username)
		assert.Equal(t, user.RoleAdmin, sess.Role)
		assert.Equal(t, "CBS", sess.CollegeID)
		assert.Empty(t, sess.Batch)
	})

	t.Run("default college", func(t *testing.T) {
		token := loginToken(t, srv, marchallObj(t, loginData{Username: "teacher_ece1", Password: "password"}))
		assert.Equal(t, "CUIET", getSession(t, srv, token).CollegeID)
	})
}

func Test_apiHandlers_quickLogin(t *testing.T) {
	srv := setup(t)

	quickLogin := func(t *testing.T, body []byte) (int, string) {
		req, rec := newRequest(http.MethodPost, "/api/auth/quick-login", body)
		srv.ServeHTTP(rec, req)
		var resp LoginResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec.Code, resp.Token
	}

	tests := []httpTest{
		{
			name: "nothing selected", method: http.MethodPost, path: "/api/auth/quick-login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"shortcut": "this field is required"}),
		},
		{
			name: "unknown shortcut", method: http.MethodPost, path: "/api/auth/quick-login", body: []byte(`{"shortcut": "dean"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/api/auth/quick-login", body: []byte(`{"user_id": "U_NOPE"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: login.MsgUserNotFound}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(srv, tt))
		})
	}

	t.Run("program co-ordinator shortcut", func(t *testing.T) {
		code, token := quickLogin(t, []byte(`{"shortcut": "PC"}`))
		if code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", code, http.StatusOK)
		}
		sess := getSession(t, srv, token)
		assert.Equal(t, "pc_ece", sess.Username)
		assert.Equal(t, login.QuickLoginCollege, sess.CollegeID)
		assert.Equal(t, "P_ECE", sess.ProgramID)
		assert.Equal(t, login.DemoBatch, sess.Batch)
	})

	t.Run("other users get no program", func(t *testing.T) {
		code, token := quickLogin(t, []byte(`{"user_id": "U_PC_CSE"}`))
		if code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", code, http.StatusOK)
		}
		sess := getSession(t, srv, token)
		assert.Equal(t, "pc_cse", sess.Username)
		assert.Empty(t, sess.ProgramID)
		assert.Empty(t, sess.Batch)
	})

	t.Run("disabled", func(t *testing.T) {
		srv := setup(t, func(conf *core.Config) { conf.Portal.QuickLoginEnabled = false })
		tt := httpTest{
			method: http.MethodPost, path: "/api/auth/quick-login", body: []byte(`{"shortcut": "admin"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "quick login is disabled"}),
		}
		checkCodeAndData(t, tt, serve(srv, tt))
	})
}

func Test_apiHandlers_referenceData(t *testing.T) {
	srv := setup(t)

	tests := []httpTest{
		{
			name: "colleges", path: "/api/colleges", wantCode: http.StatusOK,
			wantData: marchallList(t,
				refdata.College{ID: "CUIET", Name: "Chitkara University Institute of Engineering and Technology"},
				refdata.College{ID: "CBS", Name: "Chitkara Business School"},
				refdata.College{ID: "CCP", Name: "Chitkara College of Pharmacy"},
			),
		},
		{
			name: "quick login users", path: "/api/quick-login/users?search=teacher", wantCode: http.StatusOK,
			wantData: marchallList(t,
				user.QuickLoginOption{ID: "U_TEACHER_ECE1", Label: "Amit Singh (Teacher)"},
				user.QuickLoginOption{ID: "U_TEACHER_ECE2", Label: "Neha Gupta (Teacher)"},
				user.QuickLoginOption{ID: "U_TEACHER_CSE1", Label: "Vikram Joshi (Teacher)"},
			),
		},
		{
			name: "quick login users (unknown)", path: "/api/quick-login/users?search=zzzzzz", wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{name: "info", path: "/api/info", wantCode: http.StatusOK, wantData: marchallObj(t, info.New(nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(srv, tt))
		})
	}
}

func Test_apiHandlers_quickLoginUsers(t *testing.T) {
	srv, svcs := setupWithServices(t)
	testutil.CreateUser(t, inmemdb.NewUserRepository(svcs.DB), "U_TEACHER_NOQ", "Zoya Teacher", "teacher_noquick", "secret", user.RoleTeacher, true, false)

	tt := httpTest{
		name: "users without a demo password are listed", path: "/api/quick-login/users?search=teacher", wantCode: http.StatusOK,
		wantData: marchallList(t,
			user.QuickLoginOption{ID: "U_TEACHER_ECE1", Label: "Amit Singh (Teacher)"},
			user.QuickLoginOption{ID: "U_TEACHER_ECE2", Label: "Neha Gupta (Teacher)"},
			user.QuickLoginOption{ID: "U_TEACHER_CSE1", Label: "Vikram Joshi (Teacher)"},
			user.QuickLoginOption{ID: "U_TEACHER_NOQ", Label: "Zoya Teacher (Teacher)"},
		),
	}
	checkCodeAndData(t, tt, serve(srv, tt))

	rec := serve(srv, httpTest{method: http.MethodPost, path: "/api/auth/quick-login", body: []byte(`{"user_id": "U_TEACHER_NOQ"}`)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_apiHandlers_session(t *testing.T) {
	srv := setup(t)

	tests := []httpTest{
		{name: "auth required", path: "/api/session", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid token", path: "/api/session", token: "garbage",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(srv, tt))
		})
	}
}
