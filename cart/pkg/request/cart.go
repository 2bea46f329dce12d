package request

type AddItem struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"required,gte=1"`
}

type UpdateItem struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type Checkout struct {
	CartID string `json:"cartId" validate:"required"`
}
