package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
	"github.com/tauseefhaider1/clientfinalproject/internal/apitest"
	"github.com/tauseefhaider1/clientfinalproject/internal/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		FullName: "Asha Verma",
		Address:  "12 MG Road",
		City:     "Pune",
		Phone:    "98765-43210",
	}
}

func reconciledCart() *cart.ReconciledCart {
	valid := []cart.Line{
		{ProductID: "p1", Product: &cart.Snapshot{ID: "p1", Name: "Lamp", Price: 600, Image: "lamp.png"}, Quantity: 1},
	}
	return &cart.ReconciledCart{
		ValidLines: valid,
		InvalidLines: []cart.Line{
			{ProductID: "p2", Quantity: 2}, // deleted product
		},
		Totals: cart.ComputeTotals(valid),
	}
}

func TestSubmitter_LocalRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart makes no network call", func(t *testing.T) {
		var calls int32
		srv := apitest.New()
		defer srv.Close()
		srv.Handle(http.MethodPost, "/orders/create", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			apitest.JSON(w, http.StatusOK, map[string]any{"success": true})
		})

		s := NewSubmitter(api.New(srv.URL))

		_, err := s.Submit(ctx, validForm(), &cart.ReconciledCart{})

		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, Failed, s.State())
		assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
	})

	t.Run("invalid form makes no network call", func(t *testing.T) {
		var calls int32
		srv := apitest.New()
		defer srv.Close()
		srv.Handle(http.MethodPost, "/orders/create", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		})

		s := NewSubmitter(api.New(srv.URL))
		form := validForm()
		form.Phone = "123"

		_, err := s.Submit(ctx, form, reconciledCart())

		assert.ErrorIs(t, err, ErrPhoneInvalid)
		assert.Equal(t, Failed, s.State())
		assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
	})
}

func TestSubmitter_Success(t *testing.T) {
	ctx := context.Background()

	srv := apitest.New()
	defer srv.Close()

	var payload orderPayload
	cleared := false
	srv.Handle(http.MethodPost, "/orders/create", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		apitest.JSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"order":   map[string]any{"_id": "ord-42"},
		})
	})
	srv.Handle(http.MethodDelete, "/cart/clear", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		apitest.JSON(w, http.StatusOK, map[string]any{"success": true})
	})

	s := NewSubmitter(api.New(srv.URL))

	orderID, err := s.Submit(ctx, validForm(), reconciledCart())

	require.NoError(t, err)
	assert.Equal(t, "ord-42", orderID)
	assert.Equal(t, Succeeded, s.State())
	assert.Equal(t, "ord-42", s.OrderID())
	assert.True(t, cleared)

	// Payload carries only the valid line, normalized phone, exact totals.
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "p1", payload.Items[0].Product)
	assert.Equal(t, "Lamp", payload.Items[0].Name)
	assert.InDelta(t, 600.0, payload.Items[0].Price, 1e-2)
	assert.InDelta(t, 708.0, payload.TotalAmount, 1e-2)
	assert.Equal(t, "9876543210", payload.ShippingAddress.Phone)
	assert.Equal(t, "cod", payload.PaymentMethod)

	t.Run("succeeded instance refuses a second submit", func(t *testing.T) {
		_, err := s.Submit(ctx, validForm(), reconciledCart())
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})
}

func TestSubmitter_ClearFailureDoesNotFailTheOrder(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Handle(http.MethodPost, "/orders/create", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusCreated, map[string]any{"success": true, "orderId": "ord-7"})
	})
	// No /cart/clear handler: the clear 404s, the order still stands.

	s := NewSubmitter(api.New(srv.URL))

	orderID, err := s.Submit(context.Background(), validForm(), reconciledCart())

	require.NoError(t, err)
	assert.Equal(t, "ord-7", orderID)
	assert.Equal(t, Succeeded, s.State())
}

func TestSubmitter_BackendFailure(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	cleared := false
	srv.Handle(http.MethodPost, "/orders/create", func(w http.ResponseWriter, r *http.Request) {
		apitest.Message(w, http.StatusBadRequest, "insufficient stock for Lamp")
	})
	srv.Handle(http.MethodDelete, "/cart/clear", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
	})

	s := NewSubmitter(api.New(srv.URL))

	_, err := s.Submit(context.Background(), validForm(), reconciledCart())

	require.Error(t, err)
	// Backend message verbatim; the cart is untouched for retry.
	assert.Equal(t, "insufficient stock for Lamp", err.Error())
	assert.Equal(t, Failed, s.State())
	assert.ErrorIs(t, s.Err(), err)
	assert.False(t, cleared)

	t.Run("reset returns to idle for retry", func(t *testing.T) {
		s.Reset()
		assert.Equal(t, Idle, s.State())
		assert.NoError(t, s.Err())
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "validating", Validating.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
}
