package controller

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartService "github.com/ofblood/website/internal/cart/service"
	"github.com/ofblood/website/internal/common"
	"github.com/ofblood/website/internal/printful"
	"github.com/ofblood/website/internal/shopify"
	"github.com/ofblood/website/internal/signature"
	"github.com/ofblood/website/internal/order/service"
	"github.com/ofblood/website/order/pkg/request"
)

const webhookSecret = "shpss_test_secret"

type stubFulfillment struct {
	created []printful.CreateOrderRequest
}

func (f *stubFulfillment) CreateOrder(
	c context.Context,
	order printful.CreateOrderRequest,
) (*printful.Order, error) {
	f.created = append(f.created, order)
	return &printful.Order{ID: 555, ExternalID: order.ExternalID}, nil
}

func (f *stubFulfillment) Order(c context.Context, externalID string) (*printful.Order, error) {
	return nil, nil
}

type stubGateway struct {
	cart *shopify.Cart
}

func (f stubGateway) CreateCart(c context.Context) (*shopify.Cart, error) { return f.cart, nil }

func (f stubGateway) Cart(c context.Context, cartID string) (*shopify.Cart, error) {
	return f.cart, nil
}

func (f stubGateway) AddLine(
	c context.Context,
	cartID, variantID string,
	quantity int,
) (*shopify.Cart, error) {
	return f.cart, nil
}

func (f stubGateway) UpdateLine(
	c context.Context,
	cartID, lineID string,
	quantity int,
) (*shopify.Cart, error) {
	return f.cart, nil
}

func (f stubGateway) RemoveLine(c context.Context, cartID, lineID string) (*shopify.Cart, error) {
	return f.cart, nil
}

func newRouter(fulfillment *stubFulfillment) *mux.Router {
	router := mux.NewRouter()
	relay := service.NewRelayService(fulfillment, nil, nil)
	cart := cartService.NewCartService(
		stubGateway{cart: &shopify.Cart{ID: "gid://shopify/Cart/abc", CheckoutURL: "https://shop.example/checkout"}},
		cartService.NewMemoryIDStore(),
	)
	AttachOrderController(
		router,
		relay,
		cart,
		signature.NewShopifyVerifier(webhookSecret),
		signature.NewPrintfulVerifier("printful_secret"),
	)
	return router
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestShopifyWebhookRejectsBadSignature(t *testing.T) {
	router := newRouter(&stubFulfillment{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/webhooks/shopify",
		bytes.NewReader([]byte(`{}`)),
	)
	req.Header.Set(common.HeaderShopifyHmac, "bm90LWEtcmVhbC1zaWduYXR1cmU=")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestShopifyWebhookRejectsMalformedPayload(t *testing.T) {
	router := newRouter(&stubFulfillment{})

	body := []byte(`{"id": not json`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(common.HeaderShopifyHmac, sign(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestShopifyWebhookRelaysPaidOrder(t *testing.T) {
	fulfillment := &stubFulfillment{}
	router := newRouter(fulfillment)

	order := request.ShopifyOrder{
		ID:              2002,
		Email:           "fan@example.com",
		FinancialStatus: "paid",
		Currency:        "USD",
		LineItems: []request.ShopifyLineItem{
			{
				Title:    "Tee",
				Quantity: 1,
				Properties: []request.LineItemProperty{
					{Name: "_printful_variant_id", Value: "4011"},
				},
			},
		},
		ShippingAddress: &request.ShopifyAddress{
			Name:        "Alex Crow",
			Address1:    "13 Raven St",
			City:        "Portland",
			Zip:         "97201",
			CountryCode: "US",
		},
	}
	body, err := json.Marshal(order)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(common.HeaderShopifyHmac, sign(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, fulfillment.created, 1)

	decoded := struct {
		Data struct {
			PrintfulOrderID int64 `json:"printfulOrderId"`
		} `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	assert.Equal(t, int64(555), decoded.Data.PrintfulOrderID)
}

func TestShopifyWebhookAcksUnpaidOrder(t *testing.T) {
	fulfillment := &stubFulfillment{}
	router := newRouter(fulfillment)

	body, err := json.Marshal(request.ShopifyOrder{ID: 2003, FinancialStatus: "pending"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(common.HeaderShopifyHmac, sign(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, fulfillment.created)
}

func TestPrintfulWebhookRejectsBadSignature(t *testing.T) {
	router := newRouter(&stubFulfillment{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/webhooks/printful",
		bytes.NewReader([]byte(`{"type":"package.shipped"}`)),
	)
	req.Header.Set(common.HeaderPrintfulSignature, "deadbeef")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCheckout(t *testing.T) {
	router := newRouter(&stubFulfillment{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/orders",
		bytes.NewReader([]byte(`{"cartId":"gid://shopify/Cart/abc"}`)),
	)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	decoded := struct {
		Data struct {
			CartID      string `json:"cartId"`
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	assert.Equal(t, "gid://shopify/Cart/abc", decoded.Data.CartID)
	assert.Equal(t, "https://shop.example/checkout", decoded.Data.CheckoutURL)
}

func TestCheckoutRequiresCartID(t *testing.T) {
	router := newRouter(&stubFulfillment{})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{}`)))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
