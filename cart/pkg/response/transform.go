package response

import (
	"github.com/shopspring/decimal"

	"github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/shopify"
)

// Transform flattens a vendor cart into the canonical shape. A missing
// top-level id is a hard error; any line missing its node, merchandise or
// product is silently dropped so one malformed line never takes down the
// whole cart.
func Transform(wire *shopify.Cart) (Cart, error) {
	if wire == nil || wire.ID == "" {
		return Cart{}, errors.ErrMissingCartID
	}

	cart := Cart{
		ID:            wire.ID,
		CheckoutURL:   wire.CheckoutURL,
		TotalQuantity: wire.TotalQuantity,
		CurrencyCode:  "USD",
		Items:         []CartItem{},
	}
	if wire.Cost.TotalAmount != nil {
		cart.TotalAmount = minorUnits(wire.Cost.TotalAmount.Amount)
		if wire.Cost.TotalAmount.CurrencyCode != "" {
			cart.CurrencyCode = wire.Cost.TotalAmount.CurrencyCode
		}
	}

	for _, edge := range wire.Lines.Edges {
		line := edge.Node
		if line == nil || line.Merchandise == nil || line.Merchandise.Product == nil {
			continue
		}
		variant := line.Merchandise
		product := variant.Product

		item := CartItem{
			ID:           line.ID,
			VariantID:    variant.ID,
			ProductID:    product.ID,
			Title:        product.Title,
			VariantTitle: variant.Title,
			Quantity:     line.Quantity,
			Handle:       product.Handle,
		}
		if variant.Price != nil {
			item.Price = minorUnits(variant.Price.Amount)
		}
		item.Image = lineImage(variant, product)

		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

// minorUnits parses a decimal amount string into integer minor units.
// Unparseable amounts degrade to zero rather than failing the transform.
func minorUnits(amount string) int64 {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// lineImage prefers the variant image, falls back to the product's first
// image, and finally the empty string.
func lineImage(variant *shopify.Variant, product *shopify.Product) string {
	if variant.Image != nil && variant.Image.URL != "" {
		return variant.Image.URL
	}
	for _, edge := range product.Images.Edges {
		if edge.Node != nil && edge.Node.URL != "" {
			return edge.Node.URL
		}
	}
	return ""
}
