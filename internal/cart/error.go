package cart

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
)

var (
	ErrLineNotFound = errors.New("cart item not found")

	// ErrLineBusy means a previous mutation on the same line has not
	// finished its mutate-then-refetch cycle yet.
	ErrLineBusy = errors.New("cart item update still in flight")

	// ErrUnavailable means the backend does not implement the requested
	// cart route. The caller must tell the user instead of pretending the
	// operation happened.
	ErrUnavailable = errors.New("cart operation not supported by the backend")
)

// asCapability rewraps a 404/501 from a cart mutation route as
// ErrUnavailable. Some deployments of the backend never grew the
// remove/clear/update routes.
func asCapability(err error) error {
	switch api.StatusOf(err) {
	case http.StatusNotFound, http.StatusNotImplemented:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
