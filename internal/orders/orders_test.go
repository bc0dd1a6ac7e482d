package orders

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
	"github.com/tauseefhaider1/clientfinalproject/internal/apitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Mine(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Handle(http.MethodGet, "/orders/my", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		apitest.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"orders": []map[string]any{
				{
					"_id":         "ord-1",
					"totalAmount": 708.0,
					"status":      "pending",
					"createdAt":   "2026-08-30T10:00:00Z",
					"items": []map[string]any{
						{"product": "p1", "name": "Lamp", "price": 600, "quantity": 1},
					},
				},
			},
		})
	})

	apiClient := api.New(srv.URL)
	apiClient.SetToken("tok")

	list, err := NewClient(apiClient).Mine(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ord-1", list[0].ID)
	assert.Equal(t, "pending", list[0].Status)
	assert.InDelta(t, 708.0, list[0].TotalAmount, 1e-2)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), list[0].CreatedAt)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, "Lamp", list[0].Items[0].Name)
}

func TestClient_Get(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Handle(http.MethodGet, "/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if apitest.Param(r, "id") != "ord-1" {
			apitest.Message(w, http.StatusNotFound, "order not found")
			return
		}
		apitest.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"order": map[string]any{
				"_id":    "ord-1",
				"status": "delivered",
				"shippingAddress": map[string]any{
					"fullName": "Asha Verma",
					"phone":    "9876543210",
				},
			},
		})
	})

	c := NewClient(api.New(srv.URL))

	t.Run("found", func(t *testing.T) {
		o, err := c.Get(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, "delivered", o.Status)
		assert.Equal(t, "Asha Verma", o.ShippingAddress.FullName)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := c.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
