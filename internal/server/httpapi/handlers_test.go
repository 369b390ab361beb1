package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body.Bytes(), &m))
	return m
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorAccessDenied, http.StatusForbidden},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorDuplicateKey, http.StatusConflict},
		{common.ErrorResourceInUse, http.StatusConflict},
		{common.ErrorInvalidArgument, http.StatusBadRequest},
		{common.ErrorTransactionFailure, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestAuthorize(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/authorize", "", "application/json", `{"id":"alice","password":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "ticket-alice", body["ticket"])

	env.acc.loginErr = common.ErrorUnauthorized
	rec = env.do(t, http.MethodPost, "/api/authorize", "", "application/json", `{"id":"alice","password":"x"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body = decodeBody(t, rec.Body)
	assert.Equal(t, "Error", body["status"])
	assert.Equal(t, "unauthorized", body["reason"])

	rec = env.do(t, http.MethodPost, "/api/authorize", "", "application/json", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/memories", "", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/memories", "forged", "", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/memories", "ticket-alice", "", "").Code)
}

func TestGetUsers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users", "ticket-sysadmin", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody(t, rec.Body)["users"].([]any)
	require.Len(t, users, 2)
	first := users[0].(map[string]any)
	assert.Equal(t, "SA", first["role"])
	assert.NotContains(t, first, "PasswordHash")

	rec = env.do(t, http.MethodGet, "/api/users", "ticket-alice", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/users?id=alice", "ticket-alice", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody(t, rec.Body)["user"].(map[string]any)["id"])

	rec = env.do(t, http.MethodGet, "/api/users?id=ghost", "ticket-sysadmin", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := "ticket-sysadmin"

	rec := env.do(t, http.MethodPost, "/api/users", admin, "application/json",
		`{"command":"addUser","id":"dave","name":"Dave","email":"dave@example.com","role":"PM"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.acc.added)
	assert.Equal(t, models.ProjectManager, env.acc.added.Role)

	rec = env.do(t, http.MethodPost, "/api/users", admin, "application/json",
		`{"command":"updateUser","id":"dave","name":"Dave","email":"dave@example.com","role":"TR"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Translator, env.acc.updated.Role)

	rec = env.do(t, http.MethodPost, "/api/users", admin, "application/json",
		`{"command":"addUser","id":"x","name":"X","email":"x@example.com","role":"XX"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(t, http.MethodPost, "/api/users", admin, "application/json", `{"command":"toggleLock","id":"dave"}`)
	assert.Equal(t, "dave", env.acc.toggled)

	env.do(t, http.MethodPost, "/api/users", admin, "application/json", `{"command":"removeUser","id":"dave"}`)
	assert.Equal(t, "dave", env.acc.removed)

	env.do(t, http.MethodPost, "/api/users", "ticket-alice", "application/json",
		`{"command":"changePassword","current":"old","newPassword":"new"}`)
	assert.Equal(t, [2]string{"old", "new"}, env.acc.pwd)

	rec = env.do(t, http.MethodPost, "/api/users", admin, "application/json", `{"command":"dance"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.acc.err = common.ErrorResourceInUse
	rec = env.do(t, http.MethodPost, "/api/users", admin, "application/json", `{"command":"removeUser","id":"pm"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "resource in use", decodeBody(t, rec.Body)["reason"])
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	env := newTestEnv(t)
	env.acc.err = errors.New("db error: disk on fire")

	rec := env.do(t, http.MethodPost, "/api/users", "ticket-sysadmin", "application/json", `{"command":"toggleLock","id":"x"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeBody(t, rec.Body)["reason"])
}

func TestPostMemories(t *testing.T) {
	env := newTestEnv(t)
	caller := "ticket-alice"

	rec := env.do(t, http.MethodPost, "/api/memories", caller, "application/json",
		`{"command":"addMemory","name":"Legal","project":"P"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeBody(t, rec.Body)["memory"].(map[string]any)
	assert.Equal(t, "generated", m["id"])
	assert.Equal(t, "alice", m["owner"])

	rec = env.do(t, http.MethodPost, "/api/memories", caller, "application/json", `{"command":"getPermissions","id":"tm1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	perms := decodeBody(t, rec.Body)["permissions"].([]any)
	require.Len(t, perms, 1)
	assert.Equal(t, true, perms[0].(map[string]any)["read"])

	rec = env.do(t, http.MethodPost, "/api/memories", "ticket-sysadmin", "application/json",
		`{"command":"setPermissions","id":"tm1","permissions":[{"user":"alice","read":true,"write":true}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tm1", env.mem.grantOn)
	require.Len(t, env.mem.grants, 1)
	assert.Equal(t, models.Rights{Read: true, Write: true}, env.mem.grants[0].Rights)

	rec = env.do(t, http.MethodPost, "/api/memories", caller, "application/json", `{"command":"getRights","id":"tm1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rights := decodeBody(t, rec.Body)["rights"].(map[string]any)
	assert.Equal(t, true, rights["export"])

	env.mem.err = common.ErrorAccessDenied
	rec = env.do(t, http.MethodPost, "/api/memories", caller, "application/json", `{"command":"removeMemory","id":"tm1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpload_Raw(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/upload", "ticket-alice", "application/octet-stream", "<tmx/>")
	require.Equal(t, http.StatusOK, rec.Code)
	key := decodeBody(t, rec.Body)["file"].(string)
	assert.True(t, strings.HasSuffix(key, "/upload.tmx"))

	assert.Equal(t, "<tmx/>", env.uploaded(t, key))
}

func TestUpload_Multipart(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "memory.tmx")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("<tmx/>"))
	require.NoError(t, mw.Close())

	rec := env.do(t, http.MethodPost, "/api/upload", "ticket-alice", mw.FormDataContentType(), buf.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(decodeBody(t, rec.Body)["file"].(string), "/memory.tmx"))
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/upload", "ticket-alice", "text/xml", strings.Repeat("x", 4096))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmailServer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/emailserver", "ticket-alice", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/emailserver", "ticket-sysadmin", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "", body["server"])
	assert.Equal(t, false, body["tls"])

	rec = env.do(t, http.MethodPost, "/api/emailserver", "ticket-sysadmin", "application/json",
		`{"server":"smtp.example.com","port":"587","from":"tm@example.com","tls":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := env.settings.Load()
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", saved.Server)
	assert.True(t, saved.TLS)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/nothing", "", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Error", decodeBody(t, rec.Body)["status"])
}
