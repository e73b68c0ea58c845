package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"coffee-os-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

type fakeAPI struct {
	lastQuery map[string]string
	loggedOut bool
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/auth/login" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "fail", "message": "Invalid Credentials."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Successfully logged in",
			"user":    map[string]string{"id": "u1", "email": body["email"]},
			"token":   goodToken,
		})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+goodToken {
		writeJSON(w, http.StatusForbidden, map[string]string{"status": "fail", "message": "Invalid or expired token."})
		return
	}

	f.lastQuery = map[string]string{}
	for k := range r.URL.Query() {
		f.lastQuery[k] = r.URL.Query().Get(k)
	}

	switch r.URL.Path {
	case "/api/v1/auth/logout":
		f.loggedOut = true
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	case "/api/v1/coffee-shops":
		writeJSON(w, http.StatusOK, map[string]interface{}{"coffeeShops": []map[string]interface{}{
			{"_id": "64b7f0c2a1b2c3d4e5f60718", "name": "Cuervo", "slug": "cuervo", "location": map[string]interface{}{"type": "Point", "coordinates": []float64{-58.42, -34.59}}},
		}})
	case "/api/v1/beans":
		writeJSON(w, http.StatusOK, map[string]interface{}{"beans": []map[string]interface{}{
			{"_id": "64b7f0c2a1b2c3d4e5f60719", "name": "Huila", "coffeeShopId": map[string]string{"_id": "64b7f0c2a1b2c3d4e5f60718", "name": "Cuervo", "slug": "cuervo"}},
		}})
	case "/api/v1/zones":
		writeJSON(w, http.StatusOK, map[string]interface{}{"zones": []interface{}{}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "fail", "message": "Route not found."})
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI, *SessionStore) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := &SessionStore{Path: filepath.Join(t.TempDir(), "coffeectl", "session.json")}
	c, err := New(srv.URL, store)
	require.NoError(t, err)
	return c, api, store
}

func TestLoginStoresSession(t *testing.T) {
	c, _, store := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "ana@coffee.test", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid Credentials.", apiErr.Message)

	res, err := c.Login(ctx, "ana@coffee.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, goodToken, res.Token)

	sess, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, goodToken, sess.Token)
	assert.Equal(t, "ana@coffee.test", sess.User.Email)

	// A fresh client picks the stored token up.
	again, err := New("http://unused", store)
	require.NoError(t, err)
	assert.Equal(t, goodToken, again.Token())
}

func TestListsSendBearerAndFilters(t *testing.T) {
	c, api, _ := newTestClient(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "ana@coffee.test", "secret1")
	require.NoError(t, err)

	near := models.NewGeoPoint(-58.4, -34.6)
	shops, err := c.ListCoffeeShops(ctx, ShopQuery{Vibe: "Focus", Near: &near, MaxDistance: 1500})
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "cuervo", shops[0].Slug)
	assert.Equal(t, map[string]string{"vibe": "Focus", "near": "-58.4,-34.6", "maxDistance": "1500"}, api.lastQuery)

	beans, err := c.ListBeans(ctx, BeanQuery{RoastLevel: "Light"})
	require.NoError(t, err)
	require.Len(t, beans, 1)
	require.NotNil(t, beans[0].CoffeeShop)
	assert.Equal(t, "Cuervo", beans[0].CoffeeShop.Name)

	zones, err := c.ListZones(ctx)
	require.NoError(t, err)
	assert.Empty(t, zones)
}

func TestRejectedTokenClearsSession(t *testing.T) {
	c, _, store := newTestClient(t)
	require.NoError(t, store.Save(&Session{Token: "stale"}))
	c.token = "stale"

	_, err := c.ListCoffeeShops(context.Background(), ShopQuery{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, c.Token())

	_, statErr := os.Stat(store.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogout(t *testing.T) {
	c, api, store := newTestClient(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "ana@coffee.test", "secret1")
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	assert.True(t, api.loggedOut)
	assert.Empty(t, c.Token())
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Logging out twice is harmless.
	require.NoError(t, c.Logout(ctx))
}
