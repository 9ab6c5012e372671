package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shiksha/assets"
	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
	emailsvc "github.com/trezcool/shiksha/services/email"
	inmemdb "github.com/trezcool/shiksha/storage/database/inmem"
	"github.com/trezcool/shiksha/tests"
)

const testPwd = "Pwd#1234"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	usrRepo user.Repository
	appRepo appstate.Repository
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	appRepo := inmemdb.NewAppStateRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf, logger)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	sessSvc := navigation.NewService(inmemdb.NewSessionRepository(db), inmemdb.NewRoleStore(db), logger)
	appSvc := appstate.NewService(appRepo, logger, appstate.WithSyncDelays(time.Millisecond, time.Millisecond))
	t.Cleanup(appSvc.Close)
	sessSvc.OnLogout(func(ctx context.Context, id string) { _, _ = appSvc.Reset(ctx, id) })

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		SessionSvc:     sessSvc,
		AppStateSvc:    appSvc,
		UserSvc:        user.NewService(usrRepo, validate, translator),
		MailSvc:        mailSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &testApp{Server: server, usrRepo: usrRepo, appRepo: appRepo, mailSvc: mailSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
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

// do serves the request and decodes the response body into dest, when given.
func (app *testApp) do(t *testing.T, wantCode int, method, path, token string, body []byte, dest ...interface{}) {
	t.Helper()
	req, rec := newAuthRequest(method, path, token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, wantCode, rec.Code, rec.Body.String())
	if len(dest) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest[0]))
	}
}

func (app *testApp) getToken(t *testing.T, usr user.User, sessionID string) string {
	t.Helper()
	token, err := app.jwt.generateToken(app.jwt.claims(usr, sessionID))
	require.NoError(t, err)
	return token
}

// startSession creates a session and walks it to the login screen with role selected.
func (app *testApp) startSession(t *testing.T, role navigation.Role) string {
	t.Helper()
	var st navigation.State
	app.do(t, http.StatusCreated, http.MethodPost, "/v1/sessions", "", nil, &st)
	id := st.Session.ID
	app.do(t, http.StatusOK, http.MethodPost, "/v1/sessions/"+id+"/splash-complete", "", nil)
	app.do(t, http.StatusOK, http.MethodPost, "/v1/sessions/"+id+"/role", "", marshalObj(t, RoleRequest{Role: role.String()}))
	return id
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
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
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
