package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyCartID        = "cartId"
	KeyLineID        = "lineId"
	KeyVariantID     = "variantId"
	KeyQuantity      = "quantity"
	KeyHandle        = "handle"
	KeyShowID        = "showId"
	KeyOrderID       = "orderId"
	KeyEventType     = "eventType"
	KeyEmail         = "email"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyHeader        = "header"
	KeyBody          = "body"
)
