package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		productID string
		valid     bool
		price     float64
	}{
		{
			name:      "nested product object",
			body:      `{"product":{"_id":"p1","name":"Mug","price":120,"image":"mug.png"},"quantity":2}`,
			productID: "p1",
			valid:     true,
			price:     120,
		},
		{
			name:      "flat item with line-level price",
			body:      `{"productId":"p2","name":"Pen","price":35.5,"quantity":1}`,
			productID: "p2",
			valid:     true,
			price:     35.5,
		},
		{
			name:      "deleted product is null",
			body:      `{"product":null,"quantity":2}`,
			productID: "",
			valid:     false,
		},
		{
			name:      "product as bare id string",
			body:      `{"product":"p3","quantity":1}`,
			productID: "p3",
			valid:     false,
		},
		{
			name:      "numeric string price is tolerated",
			body:      `{"product":{"_id":"p4","name":"Cap","price":"250"},"quantity":1}`,
			productID: "p4",
			valid:     true,
			price:     250,
		},
		{
			name:      "garbage price degrades the line",
			body:      `{"product":{"_id":"p5","name":"Hat","price":"two hundred"},"quantity":1}`,
			productID: "p5",
			valid:     false,
		},
		{
			name:      "null price on product falls back to line price",
			body:      `{"product":{"_id":"p6","name":"Tee","price":null},"price":199,"quantity":3}`,
			productID: "p6",
			valid:     true,
			price:     199,
		},
		{
			name:      "zero price is invalid",
			body:      `{"product":{"_id":"p7","name":"Freebie","price":0},"quantity":1}`,
			productID: "p7",
			valid:     false,
		},
		{
			name:      "negative price is invalid",
			body:      `{"product":{"_id":"p8","name":"Glitch","price":-10},"quantity":1}`,
			productID: "p8",
			valid:     false,
		},
		{
			name:      "zero quantity is invalid",
			body:      `{"product":{"_id":"p9","name":"Mug","price":100},"quantity":0}`,
			productID: "p9",
			valid:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Line
			require.NoError(t, json.Unmarshal([]byte(tt.body), &l))

			assert.Equal(t, tt.productID, l.ProductID)
			assert.Equal(t, tt.valid, l.Valid())
			if tt.valid {
				require.NotNil(t, l.Product)
				assert.Equal(t, tt.price, l.Product.Price)
			}
		})
	}
}

func TestLine_MalformedFieldDegradesNotAborts(t *testing.T) {
	// One broken line must not take the whole items array down.
	body := `{"items":[
		{"product":{"_id":"good","name":"Mug","price":100},"quantity":1},
		{"product":{"_id":"bad","price":{"nested":"junk"}},"quantity":1}
	]}`

	var doc struct {
		Items []Line `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	require.Len(t, doc.Items, 2)

	assert.True(t, doc.Items[0].Valid())
	assert.False(t, doc.Items[1].Valid())
}

func TestReconciledCart_Find(t *testing.T) {
	rc := &ReconciledCart{
		ValidLines: []Line{
			{ProductID: "p1", Product: &Snapshot{ID: "p1", Price: 10}, Quantity: 1},
		},
		InvalidLines: []Line{
			{ProductID: "p2", Quantity: 2},
		},
	}

	l, ok := rc.Find("p2")
	assert.True(t, ok)
	assert.Equal(t, 2, l.Quantity)

	_, ok = rc.Find("missing")
	assert.False(t, ok)
}
