package cart

import (
	"encoding/json"
	"math"
	"strconv"
)

// Snapshot is the product data embedded in a cart line. It reflects the
// product at the time the backend assembled the cart; for a deleted product
// the backend sends null and the line carries no snapshot at all.
type Snapshot struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Line is a single cart entry. Product is nil when the referenced product
// no longer exists.
type Line struct {
	ProductID string
	Product   *Snapshot
	Quantity  int
}

// Valid reports whether the line may participate in totals and checkout:
// a present snapshot, a positive finite price, and at least one unit.
// This is the single validity predicate; no view re-derives its own.
func (l Line) Valid() bool {
	if l.Product == nil || l.Quantity < 1 {
		return false
	}
	p := l.Product.Price
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// UnmarshalJSON decodes the backend's cart item, which has drifted across
// deployments: the product may be an object, a bare id string, or null, and
// price/name may live on the line itself instead of the snapshot. A field
// that cannot be made sense of degrades this one line, never the fetch.
func (l *Line) UnmarshalJSON(b []byte) error {
	var raw struct {
		Product   json.RawMessage `json:"product"`
		ProductID string          `json:"productId"`
		Quantity  int             `json:"quantity"`
		Price     json.RawMessage `json:"price"`
		Name      string          `json:"name"`
		Image     string          `json:"image"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*l = Line{ProductID: raw.ProductID, Quantity: raw.Quantity}

	linePrice, linePriceOK := parsePrice(raw.Price)

	if len(raw.Product) > 0 && string(raw.Product) != "null" {
		var obj struct {
			ID    string          `json:"_id"`
			Name  string          `json:"name"`
			Price json.RawMessage `json:"price"`
			Image string          `json:"image"`
		}
		if err := json.Unmarshal(raw.Product, &obj); err == nil {
			price, ok := parsePrice(obj.Price)
			if !ok && linePriceOK {
				price = linePrice
			}
			l.Product = &Snapshot{ID: obj.ID, Name: obj.Name, Price: price, Image: obj.Image}
			if obj.ID != "" {
				l.ProductID = obj.ID
			}
		} else {
			var id string
			if json.Unmarshal(raw.Product, &id) == nil && id != "" {
				l.ProductID = id
			}
		}
	}

	// Flat item shape: price and name on the line itself.
	if l.Product == nil && (raw.Name != "" || linePriceOK) {
		l.Product = &Snapshot{ID: raw.ProductID, Name: raw.Name, Price: linePrice, Image: raw.Image}
	}

	return nil
}

// parsePrice accepts a JSON number or a numeric string. Anything else
// (null, absent, garbage) reports false.
func parsePrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ReconciledCart is the renderable view of the server cart: lines split by
// validity and totals computed over the valid ones only. Invalid lines stay
// listed so the user sees them as removable anomalies.
type ReconciledCart struct {
	ValidLines   []Line
	InvalidLines []Line
	Totals       Totals

	// ServerTotal is the backend-computed cart total, kept for display
	// comparison only. It may be absent or stale; it is never charged.
	ServerTotal float64
}

// Find returns the line for productID, searching valid lines first.
func (c *ReconciledCart) Find(productID string) (Line, bool) {
	for _, l := range c.ValidLines {
		if l.ProductID == productID {
			return l, true
		}
	}
	for _, l := range c.InvalidLines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}
