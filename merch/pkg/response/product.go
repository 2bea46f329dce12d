package response

import (
	"github.com/shopspring/decimal"

	"github.com/ofblood/website/internal/shopify"
)

// Product is the flattened storefront product. Prices are integer minor
// currency units.
type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Handle       string    `json:"handle"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	CurrencyCode string    `json:"currencyCode"`
	Images       []string  `json:"images"`
	Variants     []Variant `json:"variants"`
}

type Variant struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	AvailableForSale bool     `json:"availableForSale"`
	Price            int64    `json:"price"`
	Options          []Option `json:"options"`
}

type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func TransformProduct(wire *shopify.Product) Product {
	product := Product{
		ID:           wire.ID,
		Title:        wire.Title,
		Handle:       wire.Handle,
		Description:  wire.Description,
		CurrencyCode: "USD",
		Images:       []string{},
		Variants:     []Variant{},
	}
	if wire.PriceRange.MinVariantPrice != nil {
		product.Price = minorUnits(wire.PriceRange.MinVariantPrice.Amount)
		if wire.PriceRange.MinVariantPrice.CurrencyCode != "" {
			product.CurrencyCode = wire.PriceRange.MinVariantPrice.CurrencyCode
		}
	}
	for _, edge := range wire.Images.Edges {
		if edge.Node == nil || edge.Node.URL == "" {
			continue
		}
		product.Images = append(product.Images, edge.Node.URL)
	}
	for _, edge := range wire.Variants.Edges {
		if edge.Node == nil {
			continue
		}
		variant := Variant{
			ID:               edge.Node.ID,
			Title:            edge.Node.Title,
			AvailableForSale: edge.Node.AvailableForSale,
			Options:          []Option{},
		}
		if edge.Node.Price != nil {
			variant.Price = minorUnits(edge.Node.Price.Amount)
		}
		for _, option := range edge.Node.SelectedOptions {
			variant.Options = append(variant.Options, Option{Name: option.Name, Value: option.Value})
		}
		product.Variants = append(product.Variants, variant)
	}
	return product
}

func TransformProducts(wire []shopify.Product) []Product {
	products := make([]Product, 0, len(wire))
	for i := range wire {
		products = append(products, TransformProduct(&wire[i]))
	}
	return products
}

func minorUnits(amount string) int64 {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
