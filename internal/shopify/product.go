package shopify

import (
	"context"

	inErrors "github.com/ofblood/website/internal/errors"
)

// Products lists the first n products of the store catalog.
func (cl *Client) Products(c context.Context, first int) ([]Product, error) {
	data := struct {
		Products struct {
			Edges []ProductEdge `json:"edges"`
		} `json:"products"`
	}{}
	if err := cl.do(c, productsQuery, map[string]interface{}{"first": first}, &data); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		if edge.Node == nil {
			continue
		}
		products = append(products, *edge.Node)
	}
	return products, nil
}

// Product fetches one product with full variant detail by its handle.
func (cl *Client) Product(c context.Context, handle string) (*Product, error) {
	data := struct {
		Product *Product `json:"product"`
	}{}
	if err := cl.do(c, productQuery, map[string]interface{}{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, inErrors.ErrProductNotFound
	}
	return data.Product, nil
}
