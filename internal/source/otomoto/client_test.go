package otomoto

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		ClientID:     "client",
		ClientSecret: "secret",
		Email:        "dealer@example.com",
		Password:     "hunter2",
		Timeout:      5 * time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tokenResponse(w http.ResponseWriter, token, refresh string, expiresIn int) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  token,
		"refresh_token": refresh,
		"expires_in":    expiresIn,
		"token_type":    "bearer",
	})
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Password = ""
	c := New(cfg, testLogger())

	_, err := c.Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthenticatePasswordGrant(t *testing.T) {
	var grantType, username string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		grantType = r.PostForm.Get("grant_type")
		username = r.PostForm.Get("username")
		tokenResponse(w, "tok-1", "ref-1", 3600)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	token, err := c.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "password", grantType)
	assert.Equal(t, "dealer@example.com", username)
}

func TestAuthenticateCachesToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		tokenResponse(w, "tok-1", "ref-1", 3600)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	_, err := c.Authenticate(context.Background())
	require.NoError(t, err)
	_, err = c.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthenticateRefreshGrant(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		grants = append(grants, r.PostForm.Get("grant_type"))
		tokenResponse(w, "tok-"+r.PostForm.Get("grant_type"), "ref-next", 3600)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	_, err := c.Authenticate(context.Background())
	require.NoError(t, err)

	// Age the cached token into the refresh window.
	c.mu.Lock()
	c.expiresAt = time.Now().Add(time.Minute)
	c.mu.Unlock()

	token, err := c.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-refresh_token", token)
	assert.Equal(t, []string{"password", "refresh_token"}, grants)
}

func TestAuthenticateRefreshFailureFallsBackToPassword(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		grant := r.PostForm.Get("grant_type")
		grants = append(grants, grant)
		if grant == "refresh_token" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		tokenResponse(w, "tok-fresh", "ref-fresh", 3600)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	_, err := c.Authenticate(context.Background())
	require.NoError(t, err)

	c.mu.Lock()
	c.expiresAt = time.Now().Add(time.Minute)
	c.mu.Unlock()

	token, err := c.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", token)
	assert.Equal(t, []string{"password", "refresh_token", "password"}, grants)
}

func TestListAdvertsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenResponse(w, "tok", "", 3600)
			return
		}
		require.Equal(t, "/account/adverts", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "dealer@example.com", r.Header.Get("User-Agent"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"id":101,"title":"Claas Lexion","status":"active","last_update_date":"2024-03-01 10:00:00"},
			{"id":102,"title":"Fendt 724","status":"active"}
		]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	adverts, err := c.ListAdverts(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, adverts, 2)
	assert.Equal(t, "101", adverts[0].ID)
	assert.Equal(t, "Claas Lexion", adverts[0].Title)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), adverts[0].LastUpdatedAt)
}

func TestListAdvertsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenResponse(w, "tok", "", 3600)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":103,"title":"Ursus C-360","status":"active"}]`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	adverts, err := c.ListAdverts(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, adverts, 1)
	assert.Equal(t, "103", adverts[0].ID)
}

func TestListAdvertsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenResponse(w, "tok", "", 3600)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	adverts, err := c.ListAdverts(context.Background(), 99, 10)
	require.NoError(t, err)
	assert.Empty(t, adverts)
}

func TestListAdvertsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenResponse(w, "tok", "", 3600)
			return
		}
		http.Error(w, `{"error":"server_error"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	_, err := c.ListAdverts(context.Background(), 1, 10)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "server_error")
}

func TestGetAdvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenResponse(w, "tok", "", 3600)
			return
		}
		require.Equal(t, "/account/adverts/101", r.URL.Path)
		w.Write([]byte(`{
			"id": 101,
			"title": "Claas Lexion",
			"status": "active",
			"new_used": "used",
			"category_id": 42,
			"params": {
				"make": "claas",
				"model": "lexion",
				"year": "2019",
				"price": {"0": "price", "1": 550000, "currency": "PLN", "gross_net": "net"},
				"features": ["Klimatyzacja"]
			},
			"photos": {
				"1": {"original": "https://img.example/a.jpg"},
				"2": {"original": "https://img.example/b.jpg"}
			}
		}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	adv, err := c.GetAdvert(context.Background(), "101")
	require.NoError(t, err)

	assert.Equal(t, "101", adv.ID)
	assert.Equal(t, "used", adv.Condition)
	assert.Equal(t, int64(42), adv.CategoryID)
	require.NotNil(t, adv.Params.Price)
	assert.Equal(t, "price", adv.Params.Price.Type)
	assert.Equal(t, "550000", adv.Params.Price.Amount)
	assert.Equal(t, "PLN", adv.Params.Price.Currency)
	assert.Equal(t, []string{"Klimatyzacja"}, adv.Params.Features)
	require.Len(t, adv.Photos, 2)
	assert.Equal(t, "https://img.example/a.jpg", adv.Photos[0].URLs["original"])
}

func TestGetCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenResponse(w, "tok", "", 3600)
			return
		}
		require.Equal(t, "/categories/42", r.URL.Path)
		w.Write([]byte(`{"id":42,"code":"agri_combines","names":{"pl":"Kombajny","en":"Combines"}}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), testLogger())
	info, err := c.GetCategory(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.ID)
	assert.Equal(t, "agri_combines", info.Code)
	assert.Equal(t, "Kombajny", info.Names["pl"])
}
