package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
	"github.com/trezcool/shiksha/tests"
)

func TestUserMe(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Meera", "meera", "meera@shiksha.dev", testPwd, user.RoleTeacher, true)
	ghost := user.User{ID: "ghost", Role: user.RoleTeacher}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "invalid token",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    "not.a.token",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown user",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    app.getToken(t, ghost, ""),
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "user not authenticated"}),
		},
	})

	var got user.User
	app.do(t, http.StatusOK, http.MethodGet, "/v1/users/me", app.getToken(t, usr, ""), nil, &got)
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, "meera", got.Username)
	assert.Empty(t, got.PasswordHash)
}

func TestTokenRefresh(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Meera", "meera", "", testPwd, user.RoleTeacher, true)
	inactive := testutil.CreateUser(t, app.usrRepo, "Old", "old_teacher", "", testPwd, user.RoleTeacher, false)

	sid := app.startSession(t, navigation.RoleTeacher)
	creds := marshalObj(t, user.Credentials{Username: "meera", Password: testPwd})
	app.do(t, http.StatusOK, http.MethodPost, "/v1/sessions/"+sid+"/login", "", creds)

	expiredIat := time.Now().Add(-app.jwt.conf.Server.JWTRefreshExpirationDelta - time.Minute).Unix()
	expired, err := app.jwt.generateToken(app.jwt.claims(usr, sid, expiredIat))
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "no token",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "inactive",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			token:    app.getToken(t, inactive, ""),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "refresh expired",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			token:    expired,
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
		},
	})

	origIat := time.Now().Add(-time.Hour).Unix()
	token, err := app.jwt.generateToken(app.jwt.claims(usr, sid, origIat))
	require.NoError(t, err)

	var res TokenResponse
	app.do(t, http.StatusOK, http.MethodPost, "/v1/users/token-refresh", token, nil, &res)
	require.NotEmpty(t, res.Token)

	claims := new(Claims)
	_, err = jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) {
		return app.jwt.config.SigningKey, nil
	})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.Subject)
	assert.Equal(t, sid, claims.SessionID)
	assert.Equal(t, origIat, claims.OrigIssuedAt)
	assert.Equal(t, user.RoleTeacher, claims.Role)
}

func TestSessionBoundToken(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Meera", "meera", "", testPwd, user.RoleTeacher, true)
	other := testutil.CreateUser(t, app.usrRepo, "Lata", "lata", "", testPwd, user.RoleTeacher, true)

	login := func(t *testing.T) (string, string) {
		id := app.startSession(t, navigation.RoleTeacher)
		var res LoginResponse
		creds := marshalObj(t, user.Credentials{Username: "meera", Password: testPwd})
		app.do(t, http.StatusOK, http.MethodPost, "/v1/sessions/"+id+"/login", "", creds, &res)
		return id, res.Token
	}
	loggedOut := marshalObj(t, httpErr{Error: "session logged out"})

	t.Run("logout", func(t *testing.T) {
		id, token := login(t)
		app.do(t, http.StatusOK, http.MethodGet, "/v1/users/me", token, nil)

		app.do(t, http.StatusOK, http.MethodPost, "/v1/sessions/"+id+"/logout", "", nil)
		runHTTPTests(t, app, []httpTest{
			{name: "me", method: http.MethodGet, path: "/v1/users/me", token: token, wantCode: http.StatusUnauthorized, wantData: loggedOut},
			{name: "refresh", method: http.MethodPost, path: "/v1/users/token-refresh", token: token, wantCode: http.StatusUnauthorized, wantData: loggedOut},
			{
				name:     "notify",
				method:   http.MethodPost,
				path:     "/v1/sessions/" + id + "/notifications",
				body:     []byte(`{"type":"marks","title":"Term 1","message":"Published"}`),
				token:    token,
				wantCode: http.StatusUnauthorized,
				wantData: loggedOut,
			},
		})
	})

	t.Run("session ended", func(t *testing.T) {
		id, token := login(t)
		app.do(t, http.StatusNoContent, http.MethodDelete, "/v1/sessions/"+id, "", nil)
		app.do(t, http.StatusUnauthorized, http.MethodGet, "/v1/users/me", token, nil)
	})

	t.Run("session of another account", func(t *testing.T) {
		id, _ := login(t)
		forged := app.getToken(t, other, id)
		app.do(t, http.StatusUnauthorized, http.MethodGet, "/v1/users/me", forged, nil)
	})

	t.Run("refreshed token stays bound", func(t *testing.T) {
		id, token := login(t)
		var res TokenResponse
		app.do(t, http.StatusOK, http.MethodPost, "/v1/users/token-refresh", token, nil, &res)

		app.do(t, http.StatusOK, http.MethodPost, "/v1/sessions/"+id+"/logout", "", nil)
		app.do(t, http.StatusUnauthorized, http.MethodGet, "/v1/users/me", res.Token, nil)
	})
}
