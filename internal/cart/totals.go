package cart

// Pricing policy. These values are a business rule shared with the backend
// and must not drift.
const (
	FreeShippingThreshold = 500.0
	FlatShippingFee       = 50.0
	TaxRate               = 0.18
)

type Totals struct {
	Subtotal   float64
	Shipping   float64
	Tax        float64
	GrandTotal float64
}

// ComputeTotals prices the valid lines: free shipping above the threshold,
// a flat fee below it, 18% tax on the subtotal.
func ComputeTotals(validLines []Line) Totals {
	var subtotal float64
	for _, l := range validLines {
		if !l.Valid() {
			continue
		}
		subtotal += l.Product.Price * float64(l.Quantity)
	}

	shipping := FlatShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	tax := subtotal * TaxRate

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal + shipping + tax,
	}
}
