package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/trader-link/internal/cache"
	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/repository/memory"
	"github.com/ignite/trader-link/internal/service/linking"
)

type testEnv struct {
	listings *memory.ListingStore
	accounts *memory.Directory
	attrs    *memory.AttributeStore
	handler  http.Handler
}

func setupTestServer(t *testing.T, apiToken string) *testEnv {
	t.Helper()
	env := &testEnv{
		listings: memory.NewListingStore(),
		accounts: memory.NewDirectory(),
		attrs:    memory.NewAttributeStore(),
	}
	svc := linking.NewService(linking.Deps{
		Listings: env.listings,
		Accounts: env.accounts,
		Attrs:    env.attrs,
		Cache:    cache.NewMemory(0, nil),
		LoginURL: "https://portal.example.com/login",
	})
	env.handler = SetupRoutes(NewHandlers(svc), apiToken)
	return env
}

func (e *testEnv) seedListing(t *testing.T, id, title, author, contactEmail string) {
	t.Helper()
	e.listings.Add(domain.Listing{
		ID: id, Title: title, Status: domain.ListingPublished, AuthorAccountID: author,
	})
	if contactEmail != "" {
		require.NoError(t, e.attrs.Set(context.Background(), domain.EntityListing, id, domain.AttrContactEmail, contactEmail))
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	env := setupTestServer(t, "")
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestBearerAuth(t *testing.T) {
	env := setupTestServer(t, "s3cret")
	env.accounts.Add(domain.Account{ID: "a1", Email: "a@x.com"})

	rec := env.do(t, http.MethodGet, "/api/v1/accounts/a1/listings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/a1/listings", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	ok := httptest.NewRecorder()
	env.handler.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	// Health stays open.
	unauth := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, unauth.Code)
}

func TestListOwnedListings(t *testing.T) {
	env := setupTestServer(t, "")
	env.accounts.Add(domain.Account{ID: "a1", Email: "jane@x.com"})
	env.seedListing(t, "l1", "Bakery", "a1", "")
	env.seedListing(t, "l2", "Florist", "other", "jane@x.com")
	env.seedListing(t, "l3", "Plumbing", "other", "")

	rec := env.do(t, http.MethodGet, "/api/v1/accounts/a1/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "a1", body["account_id"])
}

func TestCheckAccess(t *testing.T) {
	env := setupTestServer(t, "")
	env.accounts.Add(domain.Account{ID: "a1", Email: "jane@x.com"})
	env.seedListing(t, "l1", "Bakery", "a1", "")

	rec := env.do(t, http.MethodGet, "/api/v1/listings/l1/access?account_id=a1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["allowed"])

	rec = env.do(t, http.MethodGet, "/api/v1/listings/l1/access?account_id=stranger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["allowed"])

	rec = env.do(t, http.MethodGet, "/api/v1/listings/l1/access", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectAndDisconnect(t *testing.T) {
	env := setupTestServer(t, "")
	env.accounts.Add(domain.Account{ID: "a1", Email: "jane@x.com"})
	env.seedListing(t, "l1", "Bakery", "admin", "")

	rec := env.do(t, http.MethodPost, "/api/v1/connections", map[string]any{
		"listing_id": "l1", "account_id": "a1", "mode": "explicit_only",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := env.attrs.Get(context.Background(), domain.EntityListing, "l1", domain.AttrLinkedAccountID)
	require.NoError(t, err)
	assert.Equal(t, "a1", got)

	rec = env.do(t, http.MethodDelete, "/api/v1/connections/l1?account_id=a1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = env.attrs.Get(context.Background(), domain.EntityListing, "l1", domain.AttrLinkedAccountID)
	assert.ErrorIs(t, err, linking.ErrNotFound)
}

func TestConnectErrorMapping(t *testing.T) {
	env := setupTestServer(t, "")
	env.accounts.Add(domain.Account{ID: "a1", Email: "jane@x.com"})
	env.seedListing(t, "l1", "Bakery", "admin", "")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown listing", map[string]any{"listing_id": "nope", "account_id": "a1"}, http.StatusNotFound},
		{"unknown account", map[string]any{"listing_id": "l1", "account_id": "nope"}, http.StatusNotFound},
		{"bad mode", map[string]any{"listing_id": "l1", "account_id": "a1", "mode": "sideways"}, http.StatusUnprocessableEntity},
		{"missing ids", map[string]any{}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/connections", tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRunAutoLink(t *testing.T) {
	env := setupTestServer(t, "")
	env.accounts.Add(domain.Account{ID: "a1", Email: "jane@x.com", DisplayName: "Jane"})
	env.seedListing(t, "l1", "Bakery", "admin", "JANE@X.COM")

	rec := env.do(t, http.MethodPost, "/api/v1/autolink/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["linked"])
}

func TestRunProvisionBatch(t *testing.T) {
	env := setupTestServer(t, "")
	env.seedListing(t, "l1", "Bakery", "admin", "new@x.com")

	rec := env.do(t, http.MethodPost, "/api/v1/provision/batch", map[string]any{
		"batch_size": 0, "offset": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["created"])
	assert.Equal(t, true, body["complete"])
}

func TestCreateAccountForListing(t *testing.T) {
	env := setupTestServer(t, "")
	env.seedListing(t, "l1", "Bakery", "admin", "owner@x.com")
	env.seedListing(t, "l2", "Florist", "admin", "")

	rec := env.do(t, http.MethodPost, "/api/v1/listings/l1/account", map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	accountID, _ := decodeBody(t, rec)["account_id"].(string)
	assert.NotEmpty(t, accountID)

	// Missing contact email is a semantic rejection.
	rec = env.do(t, http.MethodPost, "/api/v1/listings/l2/account", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Repeat on an already-connected listing conflicts.
	rec = env.do(t, http.MethodPost, "/api/v1/listings/l1/account", map[string]any{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecentErrors(t *testing.T) {
	env := setupTestServer(t, "")
	// Provisioning with notifications but no notifier records a failure.
	env.seedListing(t, "l1", "Bakery", "admin", "a@x.com")
	rec := env.do(t, http.MethodPost, "/api/v1/listings/l1/account", map[string]any{
		"send_notification": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/errors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/errors?limit=borked", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
