package shopify

import (
	"context"
	"fmt"

	inErrors "github.com/ofblood/website/internal/errors"
)

type cartMutationResult struct {
	Cart       *Cart       `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

func (r cartMutationResult) cartOrError(op string) (*Cart, error) {
	if len(r.UserErrors) > 0 {
		return nil, fmt.Errorf("%s rejected: %s", op, r.UserErrors[0].Message)
	}
	if r.Cart == nil {
		return nil, fmt.Errorf("%s returned no cart", op)
	}
	return r.Cart, nil
}

// CreateCart creates an empty vendor-owned cart and returns it.
func (cl *Client) CreateCart(c context.Context) (*Cart, error) {
	data := struct {
		CartCreate cartMutationResult `json:"cartCreate"`
	}{}
	if err := cl.do(c, cartCreateMutation, nil, &data); err != nil {
		return nil, err
	}
	return data.CartCreate.cartOrError("cartCreate")
}

// Cart fetches the cart by its vendor-issued identifier. An unknown id is
// reported as ErrCartNotFound so callers can self-heal.
func (cl *Client) Cart(c context.Context, cartID string) (*Cart, error) {
	data := struct {
		Cart *Cart `json:"cart"`
	}{}
	if err := cl.do(c, cartQuery, map[string]interface{}{"id": cartID}, &data); err != nil {
		return nil, err
	}
	if data.Cart == nil {
		return nil, inErrors.ErrCartNotFound
	}
	return data.Cart, nil
}

// AddLine adds quantity of a variant as a new cart line.
func (cl *Client) AddLine(
	c context.Context,
	cartID string,
	variantID string,
	quantity int,
) (*Cart, error) {
	data := struct {
		CartLinesAdd cartMutationResult `json:"cartLinesAdd"`
	}{}
	variables := map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"merchandiseId": variantID, "quantity": quantity},
		},
	}
	if err := cl.do(c, cartLinesAddMutation, variables, &data); err != nil {
		return nil, err
	}
	return data.CartLinesAdd.cartOrError("cartLinesAdd")
}

// UpdateLine sets the quantity of an existing cart line.
func (cl *Client) UpdateLine(
	c context.Context,
	cartID string,
	lineID string,
	quantity int,
) (*Cart, error) {
	data := struct {
		CartLinesUpdate cartMutationResult `json:"cartLinesUpdate"`
	}{}
	variables := map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"id": lineID, "quantity": quantity},
		},
	}
	if err := cl.do(c, cartLinesUpdateMutation, variables, &data); err != nil {
		return nil, err
	}
	return data.CartLinesUpdate.cartOrError("cartLinesUpdate")
}

// RemoveLine removes one line from the cart.
func (cl *Client) RemoveLine(c context.Context, cartID string, lineID string) (*Cart, error) {
	data := struct {
		CartLinesRemove cartMutationResult `json:"cartLinesRemove"`
	}{}
	variables := map[string]interface{}{
		"cartId":  cartID,
		"lineIds": []string{lineID},
	}
	if err := cl.do(c, cartLinesRemoveMutation, variables, &data); err != nil {
		return nil, err
	}
	return data.CartLinesRemove.cartOrError("cartLinesRemove")
}
