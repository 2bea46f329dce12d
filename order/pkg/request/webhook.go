package request

// ShopifyOrder is the order payload delivered by the commerce webhook.
// Field names follow the vendor's snake_case wire format.
type ShopifyOrder struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	OrderNumber     int               `json:"order_number"`
	Email           string            `json:"email"`
	FinancialStatus string            `json:"financial_status"`
	TotalPrice      string            `json:"total_price"`
	SubtotalPrice   string            `json:"subtotal_price"`
	TotalTax        string            `json:"total_tax"`
	Currency        string            `json:"currency"`
	LineItems       []ShopifyLineItem `json:"line_items"`
	ShippingAddress *ShopifyAddress   `json:"shipping_address"`
	Customer        *ShopifyCustomer  `json:"customer"`
}

type ShopifyLineItem struct {
	ID         int64              `json:"id"`
	Title      string             `json:"title"`
	Quantity   int                `json:"quantity"`
	Price      string             `json:"price"`
	Properties []LineItemProperty `json:"properties"`
}

type LineItemProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ShopifyCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ShopifyAddress struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Name         string `json:"name"`
	Company      string `json:"company"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ProvinceCode string `json:"province_code"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
	Phone        string `json:"phone"`
}

// PrintfulWebhook is the event envelope Printful posts back. Only
// package.shipped is acted on; everything else is acknowledged and dropped.
type PrintfulWebhook struct {
	Type string              `json:"type"`
	Data PrintfulWebhookData `json:"data"`
}

type PrintfulWebhookData struct {
	Order    *PrintfulWebhookOrder `json:"order"`
	Shipment *PrintfulShipment     `json:"shipment"`
}

type PrintfulWebhookOrder struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Recipient  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"recipient"`
}

type PrintfulShipment struct {
	ID             int64  `json:"id"`
	Carrier        string `json:"carrier"`
	Service        string `json:"service"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
}
