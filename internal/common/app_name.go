package common

const (
	AppWebsite = "ofblood-website"

	CartIDKey          = "of-blood-cart-id"
	AdminSessionCookie = "admin-session"

	HeaderShopifyHmac       = "X-Shopify-Hmac-Sha256"
	HeaderPrintfulSignature = "X-Printful-Signature"
)
