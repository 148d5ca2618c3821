package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/domain"
	"motorvault-api/internal/feed"
	"motorvault-api/internal/gateway"
	"motorvault-api/internal/store"
	"motorvault-api/internal/transport/http/handler"
)

type stubStaff struct{}

func (stubStaff) Authenticate(_ context.Context, email, password string) (*auth.Principal, error) {
	if email != "dealer@motorvault.test" || password != "hunter2" {
		return nil, domain.ErrUnauthorized
	}
	return &auth.Principal{ID: "staff-1", Email: email}, nil
}

type stubTokens struct {
	sessions map[string]*auth.Principal
	issued   int
}

func (s *stubTokens) Issue(_ context.Context, p *auth.Principal) (string, error) {
	s.issued++
	token := fmt.Sprintf("token-%d", s.issued)
	s.sessions[token] = p
	return token, nil
}

func (s *stubTokens) Verify(_ context.Context, token string) (*auth.Principal, error) {
	p, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return p, nil
}

func (s *stubTokens) Revoke(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *stubTokens) TTL() time.Duration { return time.Hour }

type testAPI struct {
	router http.Handler
	store  *store.MemoryStore
	feed   *feed.Feed
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	s := store.NewMemoryStore()
	f := feed.New(s)
	require.NoError(t, f.Start(context.Background()))
	t.Cleanup(f.Stop)

	provider := auth.NewService(stubStaff{}, &stubTokens{sessions: map[string]*auth.Principal{}})
	gw := gateway.New(s)

	router := NewRouter(
		handler.New("test", f),
		handler.NewCarsHandler(f, gw, s),
		handler.NewAuthHandler(provider),
		handler.NewStreamHandler(f, provider),
		provider,
	)
	return &testAPI{router: router, store: s, feed: f}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("X-Token", token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T) string {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dealer@motorvault.test", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func carInput() domain.CarInput {
	return domain.CarInput{
		Brand: "Audi", Model: "A4", Year: "2019", Price: "5000000",
		ImageURL: "https://example.com/a4.jpg",
	}
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_LoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dealer@motorvault.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to sign in. Please check your email and password.")
}

func TestRouter_MutationsRequireSession(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/cars"},
		{http.MethodPut, "/api/v1/cars/abc"},
		{http.MethodDelete, "/api/v1/cars/abc"},
	} {
		rec := api.do(tc.method, tc.path, "", carInput())
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec := api.do(http.MethodPost, "/api/v1/cars", "forged-token", carInput())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired session")
}

func TestRouter_CreateThenList(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(http.MethodPost, "/api/v1/cars", token, carInput())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Car added successfully!", created.Message)

	// The write arrives in the public catalog through the feed.
	rec = api.do(http.MethodGet, "/api/v1/cars", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Cars  []domain.Car `json:"cars"`
		Total int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Cars[0].ID)
	assert.Equal(t, "staff-1", list.Cars[0].OwnerID)
}

func TestRouter_ListFilters(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	in := carInput()
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/cars", token, in).Code)
	in.Brand, in.Model, in.Price = "BMW", "X5", "9000000"
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/cars", token, in).Code)

	var list struct {
		Cars  []domain.Car `json:"cars"`
		Total int          `json:"total"`
	}

	rec := api.do(http.MethodGet, "/api/v1/cars?q=audi", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Audi", list.Cars[0].Brand)

	rec = api.do(http.MethodGet, "/api/v1/cars?max_price=6000000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Audi", list.Cars[0].Brand)
}

func TestRouter_DetailNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/cars/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestRouter_UpdateThroughDraft(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(http.MethodPost, "/api/v1/cars", token, carInput())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	in := carInput()
	in.Price = "4500000"
	in.Status = "Sold"
	rec = api.do(http.MethodPut, "/api/v1/cars/"+created.ID, token, in)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Car updated successfully!")

	got, err := api.store.GetOne(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(4500000), got.Price)
	assert.Equal(t, domain.StatusSold, got.Status)
}

func TestRouter_UpdateMissingRecord(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(http.MethodPut, "/api/v1/cars/ghost", token, carInput())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CreateValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	in := carInput()
	in.Brand = ""
	in.Year = "long ago"
	rec := api.do(http.MethodPost, "/api/v1/cars", token, in)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"VALIDATION"`)
	assert.Contains(t, rec.Body.String(), `"brand"`)
	assert.Contains(t, rec.Body.String(), `"year"`)
}

func TestRouter_DeleteRemovesListing(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(http.MethodPost, "/api/v1/cars", token, carInput())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = api.do(http.MethodDelete, "/api/v1/cars/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Car deleted successfully.")

	// Absent target still succeeds.
	rec = api.do(http.MethodDelete, "/api/v1/cars/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := api.store.GetOne(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRouter_LogoutRevokesSession(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/cars", token, carInput())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LogoutWithoutToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_BearerTokenAccepted(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t)

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(carInput())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cars", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_DeadFeedDegrades(t *testing.T) {
	api := newTestAPI(t)

	api.store.Fail(errors.New("change stream closed"))

	// The catalog refuses to serve a stale snapshot.
	rec := api.do(http.MethodGet, "/api/v1/cars", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"SUBSCRIPTION"`)

	// Readiness turns not-ok too.
	rec = api.do(http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscription failed")
}
