package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/shopify"
)

func wireCart() *shopify.Cart {
	product := &shopify.Product{
		ID:     "gid://shopify/Product/1",
		Title:  "Eternal Night Tee",
		Handle: "eternal-night-tee",
	}
	product.Images.Edges = []shopify.ImageEdge{
		{Node: &shopify.Image{URL: "https://cdn.example/product.png"}},
	}
	variant := &shopify.Variant{
		ID:      "gid://shopify/ProductVariant/11",
		Title:   "Large",
		Price:   &shopify.Money{Amount: "25.00", CurrencyCode: "USD"},
		Image:   &shopify.Image{URL: "https://cdn.example/variant.png"},
		Product: product,
	}
	cart := &shopify.Cart{
		ID:            "gid://shopify/Cart/abc",
		CheckoutURL:   "https://shop.example/checkout/abc",
		TotalQuantity: 2,
	}
	cart.Cost.TotalAmount = &shopify.Money{Amount: "50.00", CurrencyCode: "USD"}
	cart.Lines.Edges = []shopify.CartLineEdge{
		{Node: &shopify.CartLine{ID: "gid://shopify/CartLine/1", Quantity: 2, Merchandise: variant}},
	}
	return cart
}

func TestTransform(t *testing.T) {
	cart, err := Transform(wireCart())
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/Cart/abc", cart.ID)
	assert.Equal(t, "https://shop.example/checkout/abc", cart.CheckoutURL)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, int64(5000), cart.TotalAmount)
	assert.Equal(t, "USD", cart.CurrencyCode)
	require.Len(t, cart.Items, 1)

	item := cart.Items[0]
	assert.Equal(t, "gid://shopify/CartLine/1", item.ID)
	assert.Equal(t, "gid://shopify/ProductVariant/11", item.VariantID)
	assert.Equal(t, "gid://shopify/Product/1", item.ProductID)
	assert.Equal(t, "Eternal Night Tee", item.Title)
	assert.Equal(t, "Large", item.VariantTitle)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(2500), item.Price)
	assert.Equal(t, "https://cdn.example/variant.png", item.Image)
	assert.Equal(t, "eternal-night-tee", item.Handle)
}

func TestTransformMissingIDFails(t *testing.T) {
	_, err := Transform(nil)
	assert.ErrorIs(t, err, errors.ErrMissingCartID)

	wire := wireCart()
	wire.ID = ""
	_, err = Transform(wire)
	assert.ErrorIs(t, err, errors.ErrMissingCartID)
}

func TestTransformDropsMalformedLines(t *testing.T) {
	wire := wireCart()
	good := wire.Lines.Edges[0]
	wire.Lines.Edges = []shopify.CartLineEdge{
		{Node: nil},
		{Node: &shopify.CartLine{ID: "gid://shopify/CartLine/2", Quantity: 1}},
		{Node: &shopify.CartLine{
			ID:          "gid://shopify/CartLine/3",
			Quantity:    1,
			Merchandise: &shopify.Variant{ID: "gid://shopify/ProductVariant/12"},
		}},
		good,
	}

	cart, err := Transform(wire)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "gid://shopify/CartLine/1", cart.Items[0].ID)
}

func TestTransformImageFallback(t *testing.T) {
	wire := wireCart()
	line := wire.Lines.Edges[0].Node

	line.Merchandise.Image = nil
	cart, err := Transform(wire)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/product.png", cart.Items[0].Image)

	line.Merchandise.Product.Images.Edges = nil
	cart, err = Transform(wire)
	require.NoError(t, err)
	assert.Equal(t, "", cart.Items[0].Image)
}

func TestTransformDefaults(t *testing.T) {
	wire := wireCart()
	wire.Cost.TotalAmount = nil
	wire.Lines.Edges[0].Node.Merchandise.Price = &shopify.Money{Amount: "not-a-number"}

	cart, err := Transform(wire)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.TotalAmount)
	assert.Equal(t, "USD", cart.CurrencyCode)
	assert.Equal(t, int64(0), cart.Items[0].Price)
}
