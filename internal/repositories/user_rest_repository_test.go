package repositories_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTUserRepository(t *testing.T) {
	var patched []models.Order
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.User{{ID: "u-1", Orders: []models.Order{{ID: "o-1", Status: lifecycle.StatusOrdered}}}})
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "u-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.User{ID: "u-1"})
	})
	mux.HandleFunc("PATCH /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "u-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Orders []models.Order `json:"orders"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		patched = body.Orders
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	repo := repositories.NewRESTUserRepository(backend.NewClient(backend.Config{BaseURL: srv.URL}))

	users, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "o-1", users[0].Orders[0].ID)

	_, err = repo.GetByID("u-9")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.UpdateOrders("u-1", []models.Order{{ID: "o-1", Status: lifecycle.StatusShipped}}))
	require.Len(t, patched, 1)
	assert.Equal(t, lifecycle.StatusShipped, patched[0].Status)

	assert.ErrorIs(t, repo.UpdateOrders("u-9", nil), repositories.ErrNotFound)
}
