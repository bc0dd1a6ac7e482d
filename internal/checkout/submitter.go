package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
	"github.com/tauseefhaider1/clientfinalproject/internal/cart"
	"github.com/tauseefhaider1/clientfinalproject/internal/logger"

	"go.uber.org/zap"
)

var (
	// ErrEmptyCart rejects a submit with no valid lines before any
	// network call is made.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrAlreadySubmitted means this submitter instance already succeeded;
	// a fresh cart load needs a fresh Submitter.
	ErrAlreadySubmitted = errors.New("order already submitted")

	// ErrSubmitInFlight rejects a second Submit while one is running.
	ErrSubmitInFlight = errors.New("order submission in progress")
)

// State is the checkout lifecycle for one submission instance.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Submitter turns a reconciled cart plus a shipping form into an order.
// One instance covers one submission; Succeeded is terminal.
type Submitter struct {
	client *api.Client

	mu      sync.Mutex
	state   State
	orderID string
	lastErr error
}

func NewSubmitter(client *api.Client) *Submitter {
	return &Submitter{client: client}
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OrderID returns the backend's order identifier after a successful submit.
func (s *Submitter) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// Err returns the failure of the last submit, if any.
func (s *Submitter) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset returns a Failed submitter to Idle so the user can edit and retry.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Failed {
		s.state = Idle
		s.lastErr = nil
	}
}

type shippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type orderItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type orderPayload struct {
	ShippingAddress shippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TotalAmount     float64         `json:"totalAmount"`
	Items           []orderItem     `json:"items"`
}

// Submit validates locally, posts the order, and on success best-effort
// clears the server cart. Only valid lines ever reach the payload; the
// failure of the clear is logged, not fatal, because the order already
// exists. On backend failure the cart is untouched and retry is allowed.
func (s *Submitter) Submit(ctx context.Context, form Form, rc *cart.ReconciledCart) (string, error) {
	s.mu.Lock()
	switch s.state {
	case Succeeded:
		s.mu.Unlock()
		return "", ErrAlreadySubmitted
	case Validating, Submitting:
		s.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	s.state = Validating
	s.mu.Unlock()

	if rc == nil || len(rc.ValidLines) == 0 {
		return "", s.fail(ErrEmptyCart)
	}
	if err := form.Validate(); err != nil {
		return "", s.fail(err)
	}

	s.mu.Lock()
	s.state = Submitting
	s.mu.Unlock()

	payload := orderPayload{
		ShippingAddress: shippingAddress{
			FullName:   form.FullName,
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.PostalCode,
			Phone:      form.phoneDigits(),
		},
		PaymentMethod: form.paymentMethod(),
		TotalAmount:   rc.Totals.GrandTotal,
		Items:         make([]orderItem, 0, len(rc.ValidLines)),
	}
	for _, l := range rc.ValidLines {
		if !l.Valid() {
			continue
		}
		payload.Items = append(payload.Items, orderItem{
			Product:  l.ProductID,
			Name:     l.Product.Name,
			Price:    l.Product.Price,
			Quantity: l.Quantity,
			Image:    l.Product.Image,
		})
	}

	log := logger.FromCtx(ctx).With(zap.Float64("total", payload.TotalAmount))

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		OrderID string `json:"orderId"`
		Order   *struct {
			ID string `json:"_id"`
		} `json:"order"`
	}
	if err := s.client.Post(ctx, "/orders/create", payload, &resp); err != nil {
		log.Warn("order submission failed", zap.Error(err))
		return "", s.fail(err)
	}

	orderID := resp.OrderID
	if resp.Order != nil && resp.Order.ID != "" {
		orderID = resp.Order.ID
	}

	// The order exists now; a failed clear only means a stale cart view.
	if err := s.client.Delete(ctx, "/cart/clear", nil); err != nil {
		log.Warn("failed to clear cart after order", zap.Error(err))
	}

	s.mu.Lock()
	s.state = Succeeded
	s.orderID = orderID
	s.lastErr = nil
	s.mu.Unlock()

	log.Info("order placed", zap.String("order_id", orderID))
	return orderID, nil
}

func (s *Submitter) fail(err error) error {
	s.mu.Lock()
	s.state = Failed
	s.lastErr = err
	s.mu.Unlock()
	return err
}
