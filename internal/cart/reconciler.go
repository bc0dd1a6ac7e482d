package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
	"github.com/tauseefhaider1/clientfinalproject/internal/logger"

	"go.uber.org/zap"
)

// ConfirmFunc asks the user to confirm removing a line. Returning false
// leaves the cart untouched.
type ConfirmFunc func(line Line) bool

// Reconciler keeps a renderable, arithmetic-safe view of the server cart.
// The server is the only writer of cart truth: every mutation here calls the
// backend and then re-fetches, never trusting the optimistic local value.
type Reconciler struct {
	client *api.Client

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewReconciler(client *api.Client) *Reconciler {
	return &Reconciler{
		client:   client,
		inflight: make(map[string]struct{}),
	}
}

// Fetch reads the authoritative cart and partitions it into valid and
// invalid lines. A malformed line degrades to invalid; only a failed request
// or an unreadable document is an error.
func (r *Reconciler) Fetch(ctx context.Context) (*ReconciledCart, error) {
	var resp struct {
		Success bool `json:"success"`
		Cart    struct {
			Items     []Line  `json:"items"`
			CartTotal float64 `json:"cartTotal"`
		} `json:"cart"`
	}
	if err := r.client.Get(ctx, "/cart", &resp); err != nil {
		return nil, err
	}

	return reconcile(resp.Cart.Items, resp.Cart.CartTotal), nil
}

func reconcile(items []Line, serverTotal float64) *ReconciledCart {
	rc := &ReconciledCart{ServerTotal: serverTotal}
	for _, l := range items {
		if l.Valid() {
			rc.ValidLines = append(rc.ValidLines, l)
		} else {
			rc.InvalidLines = append(rc.InvalidLines, l)
		}
	}
	rc.Totals = ComputeTotals(rc.ValidLines)
	return rc
}

// Add puts quantity units of a product in the cart and re-fetches. The
// server creates the line when the product is not in the cart yet and
// increments it when it is, so this is the entry point for new products.
func (r *Reconciler) Add(ctx context.Context, productID string, quantity int) (*ReconciledCart, error) {
	if quantity < 1 {
		return nil, api.ValidationError("quantity must be at least 1")
	}
	if err := r.acquire(productID); err != nil {
		return nil, err
	}
	defer r.release(productID)

	if err := r.addCall(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return r.Fetch(ctx)
}

// ChangeQuantity adjusts a line by delta and re-fetches. A positive delta on
// a product not in the cart becomes a fresh add. Dropping below one unit
// requires confirmation and becomes a removal, never a zero-quantity update.
// A second call for the same line while one is in flight fails with
// ErrLineBusy; other lines proceed independently.
func (r *Reconciler) ChangeQuantity(ctx context.Context, productID string, delta int, confirm ConfirmFunc) (*ReconciledCart, error) {
	if delta == 0 {
		return r.Fetch(ctx)
	}
	if err := r.acquire(productID); err != nil {
		return nil, err
	}
	defer r.release(productID)

	current, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	line, ok := current.Find(productID)
	if !ok {
		if delta > 0 {
			if err := r.addCall(ctx, productID, delta); err != nil {
				return nil, err
			}
			return r.Fetch(ctx)
		}
		return current, ErrLineNotFound
	}

	newQty := line.Quantity + delta
	if newQty < 1 {
		if confirm == nil || !confirm(line) {
			return current, nil
		}
		if err := r.removeCall(ctx, productID); err != nil {
			return nil, err
		}
		return r.Fetch(ctx)
	}

	if delta > 0 {
		// The add route increments server-side.
		err = r.addCall(ctx, productID, delta)
	} else {
		err = r.updateCall(ctx, productID, newQty)
	}
	if err != nil {
		return nil, err
	}

	return r.Fetch(ctx)
}

func (r *Reconciler) addCall(ctx context.Context, productID string, quantity int) error {
	return r.client.Post(ctx, "/cart/add", map[string]any{
		"productId": productID,
		"quantity":  quantity,
	}, nil)
}

// updateCall sets an absolute quantity. Deployments without the update route
// get the remove-and-re-add fallback before the operation is reported
// unavailable.
func (r *Reconciler) updateCall(ctx context.Context, productID string, quantity int) error {
	err := r.client.Put(ctx, "/cart/update/"+productID, map[string]any{
		"quantity": quantity,
	}, nil)
	if err == nil {
		return nil
	}
	if capErr := asCapability(err); errors.Is(capErr, ErrUnavailable) {
		logger.FromCtx(ctx).Warn("cart update route missing, falling back to remove+add",
			zap.String("product_id", productID))
		if err := r.removeCall(ctx, productID); err != nil {
			return err
		}
		return r.addCall(ctx, productID, quantity)
	}
	return err
}

// Remove deletes a line and re-fetches. A backend without the remove route
// answers 404/501; that surfaces as ErrUnavailable rather than a silent no-op.
func (r *Reconciler) Remove(ctx context.Context, productID string) (*ReconciledCart, error) {
	if err := r.acquire(productID); err != nil {
		return nil, err
	}
	defer r.release(productID)

	if err := r.removeCall(ctx, productID); err != nil {
		return nil, err
	}
	return r.Fetch(ctx)
}

func (r *Reconciler) removeCall(ctx context.Context, productID string) error {
	if err := r.client.Delete(ctx, "/cart/remove/"+productID, nil); err != nil {
		return asCapability(err)
	}
	return nil
}

// Clear empties the whole cart, with the same capability contract as Remove.
func (r *Reconciler) Clear(ctx context.Context) (*ReconciledCart, error) {
	if err := r.acquire(clearKey); err != nil {
		return nil, err
	}
	defer r.release(clearKey)

	if err := r.client.Delete(ctx, "/cart/clear", nil); err != nil {
		return nil, asCapability(err)
	}
	return r.Fetch(ctx)
}

// clearKey guards full-cart clears the same way a product id guards a line.
const clearKey = "\x00clear"

func (r *Reconciler) acquire(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[key]; busy {
		return ErrLineBusy
	}
	r.inflight[key] = struct{}{}
	return nil
}

func (r *Reconciler) release(key string) {
	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()
}
