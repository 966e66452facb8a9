package models_test

import (
	"encoding/json"
	"testing"

	"shoplite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_PutKeepsInsertionOrder(t *testing.T) {
	cart := models.NewCart()
	cart.Put(models.CartLine{ProductID: 3, Title: "C", Price: 1, Qty: 1})
	cart.Put(models.CartLine{ProductID: 1, Title: "A", Price: 1, Qty: 1})
	cart.Put(models.CartLine{ProductID: 2, Title: "B", Price: 1, Qty: 1})
	cart.Put(models.CartLine{ProductID: 3, Title: "C", Price: 1, Qty: 4})

	ids := []int64{}
	for _, l := range cart.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)

	line, ok := cart.Get(3)
	require.True(t, ok)
	assert.Equal(t, 4, line.Qty)
	assert.Equal(t, 3, cart.Len())
}

func TestCart_PutNonPositiveDeletes(t *testing.T) {
	cart := models.NewCart()
	cart.Put(models.CartLine{ProductID: 1, Title: "A", Price: 1, Qty: 2})
	cart.Put(models.CartLine{ProductID: 2, Title: "B", Price: 1, Qty: 0})
	assert.Equal(t, 1, cart.Len(), "zero quantity is never stored")

	cart.Put(models.CartLine{ProductID: 1, Qty: -1})
	assert.True(t, cart.IsEmpty())
}

func TestCart_DeleteAndReset(t *testing.T) {
	cart := models.NewCart()
	cart.Put(models.CartLine{ProductID: 1, Title: "A", Price: 1, Qty: 1})
	cart.Put(models.CartLine{ProductID: 2, Title: "B", Price: 1, Qty: 1})

	assert.True(t, cart.Delete(1))
	assert.False(t, cart.Delete(1))
	assert.Equal(t, []models.CartLine{{ProductID: 2, Title: "B", Price: 1, Qty: 1}}, cart.Lines())

	cart.Put(models.CartLine{ProductID: 1, Title: "A", Price: 1, Qty: 1})
	assert.Equal(t, int64(1), cart.Lines()[1].ProductID, "re-added line goes to the end")

	cart.Reset()
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.Lines())
}

func TestCart_LinesIsACopy(t *testing.T) {
	cart := models.NewCart()
	cart.Put(models.CartLine{ProductID: 1, Title: "A", Price: 1, Qty: 1})

	lines := cart.Lines()
	lines[0].Qty = 99

	line, _ := cart.Get(1)
	assert.Equal(t, 1, line.Qty)
}

func TestCart_MarshalJSON(t *testing.T) {
	cart := models.NewCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	cart.Put(models.CartLine{ProductID: 7, Title: "Lampe", Price: 12.5, Qty: 2})
	data, err = json.Marshal(cart)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"title":"Lampe","price":12.5,"qty":2}]`, string(data))
}

func TestCartLine_Subtotal(t *testing.T) {
	assert.Equal(t, 13.48, models.CartLine{Price: 6.74, Qty: 2}.Subtotal())
	assert.Equal(t, 0.3, models.CartLine{Price: 0.1, Qty: 3}.Subtotal())
}
