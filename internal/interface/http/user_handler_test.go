package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

const testSecret = "test-secret-key-for-jwt-token-generation-and-validation-with-enough-length-for-hs512"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func newRouter(t *testing.T) (*gin.Engine, *userapp.Service) {
	t.Helper()
	v, err := validation.NewPatternValidator(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`, `^.{6,}$`, "password must be at least 6 characters")
	require.NoError(t, err)
	jwt, err := helpers.NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	svc := userapp.NewService(memory.NewUserRepository(), v, jwt, helpers.NewDiscardLogger())

	h := NewUserHandler(svc, helpers.NewDiscardLogger())
	r := gin.New()
	r.POST("/api/users/sign-up", h.SignUp)
	r.GET("/api/users/", h.List)
	return r, svc
}

func post(r http.Handler, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodPost, "/api/users/sign-up", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

const juanBody = `{
	"name": "Juan Rodriguez",
	"email": "juan@rodriguez.org",
	"password": "hunter2",
	"phones": [{"number": "1234567", "citycode": "1", "contrycode": "57"}]
}`

func TestSignUpCreated(t *testing.T) {
	r, svc := newRouter(t)

	w, env := post(r, juanBody)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	var view map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &view))
	for _, k := range []string{"id", "created", "modified", "last_login", "token", "isactive"} {
		assert.Contains(t, view, k)
	}
	assert.NotContains(t, view, "password")
	assert.NotContains(t, view, "email")

	email, err := svc.JWT.EmailOf(view["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "juan@rodriguez.org", email)
}

func TestSignUpAcceptsEmptyPhones(t *testing.T) {
	r, _ := newRouter(t)

	w, _ := post(r, `{"name":"A","email":"a@b.co","password":"secret1","phones":[]}`)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSignUpBindingErrors(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing phones", `{"name":"A","email":"a@b.co","password":"secret1"}`, "phones"},
		{"missing email", `{"name":"A","password":"secret1","phones":[]}`, "email"},
		{"blank phone number", `{"name":"A","email":"a@b.co","password":"secret1","phones":[{"number":" ","citycode":"1","contrycode":"57"}]}`, "phones[0].number"},
		{"invalid json", `{"name":`, "payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newRouter(t)

			w, env := post(r, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Contains(t, env.Error, tc.field)
		})
	}
}

func TestSignUpFormatErrors(t *testing.T) {
	r, _ := newRouter(t)

	w, env := post(r, `{"name":"A","email":"invalid-email","password":"secret1","phones":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, validation.InvalidEmailMessage, env.Message)

	w, env = post(r, `{"name":"A","email":"a@b.co","password":"123","phones":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password must be at least 6 characters", env.Message)
}

func TestSignUpConflict(t *testing.T) {
	r, _ := newRouter(t)

	w, _ := post(r, juanBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := post(r, juanBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, userapp.MsgEmailRegistered, env.Message)
}

func TestListUsers(t *testing.T) {
	r, _ := newRouter(t)
	w, _ := post(r, juanBody)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var views []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &views))
	assert.Len(t, views, 1)
}
