package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	var c Cart
	c.Add(CartItem{ProductID: 1, Name: "Controller", Price: 120})
	c.Add(CartItem{ProductID: 1, Name: "Controller", Price: 120})
	c.Add(CartItem{ProductID: 2, Name: "Chips", Price: 1.5})

	assert.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 3, c.Count())
}

func TestCart_TotalUsesSalePrice(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: 1, Price: 100, SalePrice: floatPtr(80), Quantity: 2},
		{ProductID: 2, Price: 2.5, Quantity: 3},
	}}
	assert.Equal(t, 167.5, c.Total())
}

func TestCart_UpdateQuantityZeroRemoves(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: 1, Price: 10, Quantity: 2},
		{ProductID: 2, Price: 5, Quantity: 1},
	}}

	assert.True(t, c.UpdateQuantity(1, 0))
	assert.Len(t, c.Items, 1)
	assert.Equal(t, int64(2), c.Items[0].ProductID)

	assert.True(t, c.UpdateQuantity(2, -3))
	assert.Empty(t, c.Items)
	assert.Equal(t, 0.0, c.Total())
}

func TestCart_UpdateQuantitySets(t *testing.T) {
	c := Cart{Items: []CartItem{{ProductID: 1, Price: 10, Quantity: 1}}}
	assert.True(t, c.UpdateQuantity(1, 4))
	assert.Equal(t, 40.0, c.Total())
	assert.False(t, c.UpdateQuantity(99, 1))
}

func TestCart_ViewNeverNilItems(t *testing.T) {
	v := Cart{ID: "abc"}.View()
	assert.NotNil(t, v.Items)
	assert.Equal(t, 0, v.Count)
}
