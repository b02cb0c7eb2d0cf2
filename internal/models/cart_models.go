package models

import "time"

// CartItem is a product line held in a shopping cart.
type CartItem struct {
	ProductID   int64    `json:"product_id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	ProductType string   `json:"product_type,omitempty"`
	Quantity    int      `json:"quantity"`
}

// UnitPrice is the sale price when present, else the list price.
func (i CartItem) UnitPrice() float64 {
	if i.SalePrice != nil && *i.SalePrice > 0 {
		return *i.SalePrice
	}
	return i.Price
}

// Cart is the server-side shopping cart.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Add puts one unit of item in the cart, incrementing an existing line.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets a line's quantity; quantity <= 0 removes it.
// It reports whether the product was in the cart.
func (c *Cart) UpdateQuantity(productID int64, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove drops the line for productID.
func (c *Cart) Remove(productID int64) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// Total is the sum of unit price times quantity, rounded to millimes.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice() * float64(item.Quantity)
	}
	return roundMillimes(total)
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartView is the response shape of cart endpoints.
type CartView struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}

func (c Cart) View() CartView {
	items := c.Items
	if items == nil {
		items = []CartItem{}
	}
	return CartView{ID: c.ID, Items: items, Total: c.Total(), Count: c.Count()}
}

func roundMillimes(v float64) float64 {
	if v < 0 {
		return -roundMillimes(-v)
	}
	return float64(int64(v*1000+0.5)) / 1000
}
