package odoo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.OdooConfig{
		AdminURL:       server.URL + "/",
		AdminPassword:  "master",
		TimeoutSeconds: 5,
	})
}

func TestClient_CreateDatabase(t *testing.T) {
	t.Run("sends form payload and accepts redirect", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/web/database/create", r.URL.Path)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "master", r.PostForm.Get("master_pwd"))
			assert.Equal(t, "owner@example.com", r.PostForm.Get("login"))
			assert.Equal(t, "acme_db", r.PostForm.Get("name"))
			assert.Equal(t, "Abcd123!", r.PostForm.Get("password"))
			assert.Equal(t, "es_ES", r.PostForm.Get("lang"))
			assert.Equal(t, "1", r.PostForm.Get("create_uid"))
			assert.Equal(t, "true", r.PostForm.Get("create_user"))
			assert.Equal(t, "+573000000000", r.PostForm.Get("phone"))
			assert.Equal(t, "co", r.PostForm.Get("country_code"))
			http.Redirect(w, r, "/odoo", http.StatusSeeOther)
		})

		err := client.CreateDatabase(context.Background(), CreateDatabaseRequest{
			Login:       "owner@example.com",
			Name:        "acme_db",
			Password:    "Abcd123!",
			Lang:        "es_ES",
			Phone:       "+573000000000",
			CountryCode: "CO",
		})
		assert.NoError(t, err)
	})

	t.Run("omits country code when empty", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			_, ok := r.PostForm["country_code"]
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		err := client.CreateDatabase(context.Background(), CreateDatabaseRequest{Name: "acme_db"})
		assert.NoError(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := client.CreateDatabase(context.Background(), CreateDatabaseRequest{Name: "acme_db"})
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("error rendered in page", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><div class="alert alert-danger" role="alert">Database acme_db already exists</div></html>`))
		})

		err := client.CreateDatabase(context.Background(), CreateDatabaseRequest{Name: "acme_db"})
		require.ErrorIs(t, err, ErrRejected)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("context timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := client.CreateDatabase(ctx, CreateDatabaseRequest{Name: "acme_db"})
		assert.Error(t, err)
	})
}

func TestClient_DatabaseExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/web/database/list", r.URL.Path)
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "call", req.Method)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"result":  []string{"acme_db", "other"},
		})
	})

	exists, err := client.DatabaseExists(context.Background(), "acme_db")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.DatabaseExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_ListDatabases_RPCError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"error": map[string]interface{}{
				"message": "Odoo Server Error",
				"data":    map[string]interface{}{"message": "Access Denied"},
			},
		})
	})

	_, err := client.ListDatabases(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Access Denied")
}

func TestLanguageTag(t *testing.T) {
	assert.Equal(t, "en_US", LanguageTag("en"))
	assert.Equal(t, "es_ES", LanguageTag("es"))
	assert.Equal(t, "es_ES", LanguageTag(""))
	assert.Equal(t, "es_ES", LanguageTag("fr"))
	assert.True(t, IsSupportedLanguage("en"))
	assert.False(t, IsSupportedLanguage("fr"))
}
