package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/infrastructure/geocode"
	"github.com/oksasatya/go-places-api/internal/infrastructure/imagestore"
	"github.com/oksasatya/go-places-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-places-api/pkg/helpers"
	"github.com/oksasatya/go-places-api/pkg/validation"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	places *application.PlaceService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := helpers.NewNopLogger()
	store := memory.NewStore()
	images, err := imagestore.NewLocal(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	places := application.NewPlaceService(store, images, geocode.NewStatic(), nil, logger)
	users := application.NewUserService(store, jwt, helpers.NewPasswordHasher(4), images, nil, logger, "http://localhost:3000")

	engine := NewEngine(EngineOptions{CORSOrigins: []string{"http://localhost:3000"}})
	reg := NewRegistry(engine)
	Mount(reg, Deps{Places: places, Users: users, JWT: jwt, Logger: logger, DebugMetrics: true})
	reg.RegisterAll()

	return &testAPI{t: t, engine: engine, places: places}
}

type envelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   any            `json:"error"`
}

func (a *testAPI) do(req *http.Request) (int, envelope) {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testAPI) multipart(method, path, token string, fields map[string]string, withImage bool) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if withImage {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="pic.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(a.t, err)
		_, _ = part.Write([]byte("\x89PNG fake"))
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

func (a *testAPI) sendJSON(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	b, err := json.Marshal(body)
	require.NoError(a.t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

func (a *testAPI) get(path string) (int, envelope) {
	a.t.Helper()
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testAPI) signup(name, email string) (id, token string) {
	a.t.Helper()
	code, env := a.multipart(http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": name, "email": email, "password": "pw123456",
	}, true)
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	return env.Data["userId"].(string), env.Data["token"].(string)
}

func (a *testAPI) createPlace(token, title string) (int, envelope) {
	a.t.Helper()
	return a.multipart(http.MethodPost, "/api/places", token, map[string]string{
		"title":       title,
		"description": "A very tall building",
		"address":     "20 W 34th St, New York, NY 10001",
	}, true)
}

func TestPlaceLifecycle(t *testing.T) {
	api := newTestAPI(t)
	aliceID, aliceToken := api.signup("Alice", "alice@x.com")
	bobID, bobToken := api.signup("Bob", "bob@x.com")
	require.NotEqual(t, aliceID, bobID)

	// known user without places vs unknown user
	code, env := api.get("/api/places/user/" + aliceID)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Could not find places for the provided user id.", env.Message)
	code, env = api.get("/api/places/user/nobody")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Could not find user for the provided id.", env.Message)

	code, _ = api.createPlace("", "Empire State Building")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = api.createPlace(aliceToken, "Empire State Building")
	require.Equal(t, http.StatusCreated, code, env.Message)
	place := env.Data["place"].(map[string]any)
	placeID := place["id"].(string)
	assert.Equal(t, aliceID, place["creator"])
	assert.Equal(t, map[string]any{"lat": 40.7484474, "lng": -73.9871516}, place["location"])
	imagePath := place["image"].(string)
	_, err := os.Stat(filepath.FromSlash(imagePath))
	require.NoError(t, err)

	code, env = api.get("/api/users")
	require.Equal(t, http.StatusOK, code)
	users := env.Data["users"].([]any)
	require.Len(t, users, 2)
	alice := users[0].(map[string]any)
	assert.Equal(t, aliceID, alice["id"])
	assert.Equal(t, []any{placeID}, alice["places"])
	assert.NotContains(t, alice, "password")

	// someone else may neither edit nor delete
	code, env = api.sendJSON(http.MethodPatch, "/api/places/"+placeID, bobToken, map[string]string{
		"title": "Mine now", "description": "Taken over by bob",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "You are not allowed to modify this place.", env.Message)
	code, _ = api.do(authed(http.MethodDelete, "/api/places/delete/"+placeID, bobToken))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = api.get("/api/places/" + placeID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Empire State Building", env.Data["place"].(map[string]any)["title"])

	code, _ = api.sendJSON(http.MethodPatch, "/api/places/"+placeID, aliceToken, map[string]string{
		"title": "ESB", "description": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = api.sendJSON(http.MethodPatch, "/api/places/"+placeID, aliceToken, map[string]string{
		"title": "ESB", "description": "Still very tall",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ESB", env.Data["place"].(map[string]any)["title"])

	code, env = api.do(authed(http.MethodDelete, "/api/places/delete/"+placeID, aliceToken))
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Place deleted!", env.Data["message"])

	code, _ = api.get("/api/places/" + placeID)
	assert.Equal(t, http.StatusNotFound, code)
	code, env = api.get("/api/places/user/" + aliceID)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Could not find places for the provided user id.", env.Message)

	code, _ = api.do(authed(http.MethodDelete, "/api/places/delete/"+placeID, aliceToken))
	assert.Equal(t, http.StatusNotFound, code)

	api.places.Wait()
	_, err = os.Stat(filepath.FromSlash(imagePath))
	assert.True(t, os.IsNotExist(err), "image is removed after delete")
}

func TestListKeepsCreationOrder(t *testing.T) {
	api := newTestAPI(t)
	aliceID, token := api.signup("Alice", "alice@x.com")

	var want []any
	for i := 0; i < 3; i++ {
		code, env := api.createPlace(token, fmt.Sprintf("Place %d", i))
		require.Equal(t, http.StatusCreated, code)
		want = append(want, env.Data["place"].(map[string]any)["id"])
	}

	code, env := api.get("/api/places/user/" + aliceID)
	require.Equal(t, http.StatusOK, code)
	var got []any
	for _, p := range env.Data["places"].([]any) {
		got = append(got, p.(map[string]any)["id"])
	}
	assert.Equal(t, want, got)
}

func TestCreatePlaceValidation(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup("Alice", "alice@x.com")

	code, _ := api.multipart(http.MethodPost, "/api/places", token, map[string]string{
		"title": "No image", "description": "Long enough", "address": "Somewhere",
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.multipart(http.MethodPost, "/api/places", token, map[string]string{
		"title": "", "description": "Long enough", "address": "Somewhere",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.multipart(http.MethodPost, "/api/places", token, map[string]string{
		"title": "Short", "description": "tiny", "address": "Somewhere",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestSignupAndLogin(t *testing.T) {
	api := newTestAPI(t)
	aliceID, _ := api.signup("Alice", "Alice@X.com")

	code, env := api.multipart(http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Other", "email": "alice@x.com", "password": "pw123456",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "User exists already, please login instead.", env.Message)

	code, _ = api.multipart(http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Carol", "email": "carol@x.com", "password": "short",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.multipart(http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Carol", "email": "carol@x.com", "password": "pw123456",
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.multipart(http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Carol", "email": "carol@x.com", "password": strings.Repeat("p", 80),
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.multipart(http.MethodPost, "/api/users/signup", "", map[string]string{
		"name": "Carol", "email": "carol@x.com", "password": strings.Repeat("é", 40),
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = api.sendJSON(http.MethodPost, "/api/users/login", "", map[string]string{"email": "alice@x.com", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error, "password")

	code, _ = api.sendJSON(http.MethodPost, "/api/users/login", "", map[string]string{"email": "alice@x.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.sendJSON(http.MethodPost, "/api/users/login", "", map[string]string{"email": "nobody@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.sendJSON(http.MethodPost, "/api/users/login", "", map[string]string{"email": "alice@x.com", "password": "pw123456"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, aliceID, env.Data["userId"])
	token := env.Data["token"].(string)

	code, _ = api.createPlace(token, "With login token")
	assert.Equal(t, http.StatusCreated, code)
}

func TestUsersEmpty(t *testing.T) {
	api := newTestAPI(t)
	code, _ := api.get("/api/users")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPreflightSkipsAuth(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/places", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndDebugVars(t *testing.T) {
	api := newTestAPI(t)

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "places_created"))

	req = httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7")
	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "places_api_http_requests_total")
}

func authed(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
