package shopify

// Wire shapes for the Storefront GraphQL responses. Pointers mark the
// nesting levels the vendor may omit; the cart transformer is responsible
// for tolerating them.

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type Image struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type ImageEdge struct {
	Node *Image `json:"node"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Product struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Handle          string `json:"handle"`
	Description     string `json:"description"`
	DescriptionHtml string `json:"descriptionHtml,omitempty"`
	Tags            []string `json:"tags"`
	PriceRange      struct {
		MinVariantPrice *Money `json:"minVariantPrice"`
		MaxVariantPrice *Money `json:"maxVariantPrice"`
	} `json:"priceRange"`
	Images struct {
		Edges []ImageEdge `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []VariantEdge `json:"edges"`
	} `json:"variants"`
}

type ProductEdge struct {
	Node *Product `json:"node"`
}

type VariantEdge struct {
	Node *Variant `json:"node"`
}

type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            *Money           `json:"price"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Image            *Image           `json:"image"`
	Product          *Product         `json:"product"`
}

type CartLine struct {
	ID          string   `json:"id"`
	Quantity    int      `json:"quantity"`
	Merchandise *Variant `json:"merchandise"`
}

type CartLineEdge struct {
	Node *CartLine `json:"node"`
}

type Cart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		TotalAmount    *Money `json:"totalAmount"`
		SubtotalAmount *Money `json:"subtotalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []CartLineEdge `json:"edges"`
	} `json:"lines"`
}

type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}
