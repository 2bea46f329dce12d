package response

// Cart is the flat, UI-friendly cart shape. Monetary amounts are integer
// minor currency units; totals are vendor-computed, never derived locally.
type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalAmount   int64      `json:"totalAmount"`
	CurrencyCode  string     `json:"currencyCode"`
	Items         []CartItem `json:"items"`
}

type CartItem struct {
	ID           string `json:"id"`
	VariantID    string `json:"variantId"`
	ProductID    string `json:"productId"`
	Title        string `json:"title"`
	VariantTitle string `json:"variantTitle"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
	Image        string `json:"image"`
	Handle       string `json:"handle"`
}

// Empty is the zero cart handed out before anything was added or after the
// stored identifier turned out to be stale.
func Empty() Cart {
	return Cart{CurrencyCode: "USD", Items: []CartItem{}}
}
