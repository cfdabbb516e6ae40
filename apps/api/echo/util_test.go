package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attachment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

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

// testLogger drops everything; the error handler only logs server errors.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type fakeAvatars struct{}

func (fakeAvatars) Generate(seed string) (user.Avatar, error) {
	return user.Avatar{ID: "avatar-" + seed, ContentType: "image/png", Size: 42}, nil
}

type testEnv struct {
	server Server
	conf   *core.Config
	usrSvc user.Service
	clsSvc classroom.Service
	attSvc attachment.Service
}

func setup(t *testing.T) *testEnv {
	conf := &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Darasa",
		SecretKey:                 "s3cr3t",
		JWTExpirationDelta:        time.Hour,
		JWTRefreshExpirationDelta: 2 * time.Hour,
		ClassroomCodeLength:       7,
		AvatarSize:                64,
	}

	db, err := inmemdb.Open()
	require.NoError(t, err)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc, fakeAvatars{})
	attSvc := attachment.NewService(inmemdb.NewAttachmentRepository(db), inmemdb.NewBlobStore(db))
	catalog := classroom.LoadBannerCatalog(conf.BannerStoragePath)
	clsSvc := classroom.NewService(inmemdb.NewClassroomRepository(db), attSvc, catalog, conf)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		UserSvc:        usrSvc,
		ClassroomSvc:   clsSvc,
		AttachmentSvc:  attSvc,
		DisableReqLogs: true,
	})
	return &testEnv{server: server, conf: conf, usrSvc: usrSvc, clsSvc: clsSvc, attSvc: attSvc}
}

func (env *testEnv) createUser(t *testing.T, username string) user.User {
	usr, err := env.usrSvc.Create(user.NewUser{
		Username: username,
		Email:    username + "@test.cd",
		Password: "v3ryStr0ngK3y",
	})
	require.NoError(t, err)
	return usr
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr, env.conf)
	token, err := GenerateToken(claims, env.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (env *testEnv) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	env.server.ServeHTTP(rec, req)
	return rec
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeObj(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	var payload []interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
