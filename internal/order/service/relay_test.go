package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofblood/website/internal/printful"
	"github.com/ofblood/website/order/pkg/request"
)

type fakeFulfillment struct {
	existing *printful.Order
	created  []printful.CreateOrderRequest
}

func (f *fakeFulfillment) CreateOrder(
	c context.Context,
	order printful.CreateOrderRequest,
) (*printful.Order, error) {
	f.created = append(f.created, order)
	return &printful.Order{ID: 900, ExternalID: order.ExternalID, Status: "pending"}, nil
}

func (f *fakeFulfillment) Order(c context.Context, externalID string) (*printful.Order, error) {
	return f.existing, nil
}

type fakeMailer struct {
	confirmations []string
	shipped       []string
	sendErr       error
}

func (f *fakeMailer) OrderConfirmation(c context.Context, order request.ShopifyOrder) error {
	f.confirmations = append(f.confirmations, order.Email)
	return f.sendErr
}

func (f *fakeMailer) OrderShipped(
	c context.Context,
	email string,
	name string,
	shipment request.PrintfulShipment,
) error {
	f.shipped = append(f.shipped, email)
	return f.sendErr
}

func paidOrder() request.ShopifyOrder {
	return request.ShopifyOrder{
		ID:              1001,
		OrderNumber:     7,
		Email:           "fan@example.com",
		FinancialStatus: "paid",
		Currency:        "USD",
		SubtotalPrice:   "50.00",
		TotalTax:        "4.00",
		LineItems: []request.ShopifyLineItem{
			{
				Title:    "Eternal Night Tee",
				Quantity: 2,
				Properties: []request.LineItemProperty{
					{Name: "_printful_variant_id", Value: "4011"},
				},
			},
			{
				Title:    "Tour Hoodie",
				Quantity: 1,
				Properties: []request.LineItemProperty{
					{Name: "_printful_variant_id", Value: "4012"},
				},
			},
			{
				Title:      "Digital Album",
				Quantity:   1,
				Properties: []request.LineItemProperty{{Name: "format", Value: "flac"}},
			},
		},
		ShippingAddress: &request.ShopifyAddress{
			FirstName:    "Alex",
			LastName:     "Crow",
			Address1:     "13 Raven St",
			City:         "Portland",
			Province:     "Oregon",
			ProvinceCode: "OR",
			Zip:          "97201",
			CountryCode:  "US",
		},
	}
}

func TestRelayOrderSkipsUnpaid(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	svc := NewRelayService(fulfillment, &fakeMailer{}, nil)

	order := paidOrder()
	order.FinancialStatus = "pending"
	created, err := svc.RelayOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Empty(t, fulfillment.created)
}

func TestRelayOrderMapsFulfillableItems(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	mailer := &fakeMailer{}
	svc := NewRelayService(fulfillment, mailer, nil)

	created, err := svc.RelayOrder(context.Background(), paidOrder())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "1001", created.ExternalID)

	require.Len(t, fulfillment.created, 1)
	sent := fulfillment.created[0]
	require.Len(t, sent.Items, 2, "the line without a variant property must be dropped")
	assert.Equal(t, int64(4011), sent.Items[0].VariantID)
	assert.Equal(t, 2, sent.Items[0].Quantity)
	assert.Equal(t, int64(4012), sent.Items[1].VariantID)
	assert.True(t, sent.Confirm)
	assert.Equal(t, "Alex Crow", sent.Recipient.Name)
	assert.Equal(t, "OR", sent.Recipient.StateCode)
	assert.Equal(t, "US", sent.Recipient.CountryCode)
	require.NotNil(t, sent.RetailCosts)
	assert.Equal(t, "USD", sent.RetailCosts.Currency)

	assert.Equal(t, []string{"fan@example.com"}, mailer.confirmations)
}

func TestRelayOrderWithNoFulfillableItems(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	mailer := &fakeMailer{}
	svc := NewRelayService(fulfillment, mailer, nil)

	order := paidOrder()
	order.LineItems = order.LineItems[2:]
	created, err := svc.RelayOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Empty(t, fulfillment.created)
	assert.Equal(t, []string{"fan@example.com"}, mailer.confirmations,
		"digital-only orders still get a confirmation email")
}

func TestRelayOrderIsIdempotent(t *testing.T) {
	fulfillment := &fakeFulfillment{
		existing: &printful.Order{ID: 900, ExternalID: "1001", Status: "pending"},
	}
	svc := NewRelayService(fulfillment, &fakeMailer{}, nil)

	created, err := svc.RelayOrder(context.Background(), paidOrder())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(900), created.ID)
	assert.Empty(t, fulfillment.created, "redelivered webhooks must not create a second order")
}

func TestRelayOrderRequiresShippingAddress(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	svc := NewRelayService(fulfillment, &fakeMailer{}, nil)

	order := paidOrder()
	order.ShippingAddress = nil
	_, err := svc.RelayOrder(context.Background(), order)
	assert.Error(t, err)
	assert.Empty(t, fulfillment.created)
}

func TestRelayOrderSurvivesEmailFailure(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	mailer := &fakeMailer{sendErr: errors.New("smtp down")}
	svc := NewRelayService(fulfillment, mailer, nil)

	created, err := svc.RelayOrder(context.Background(), paidOrder())
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestHandleShipment(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewRelayService(&fakeFulfillment{}, mailer, nil)

	webhook := request.PrintfulWebhook{
		Type: "package.shipped",
		Data: request.PrintfulWebhookData{
			Order: &request.PrintfulWebhookOrder{ExternalID: "1001"},
			Shipment: &request.PrintfulShipment{
				Carrier:        "USPS",
				TrackingNumber: "9400100000000000000000",
				TrackingURL:    "https://tools.usps.com/track",
			},
		},
	}
	webhook.Data.Order.Recipient.Email = "fan@example.com"
	webhook.Data.Order.Recipient.Name = "Alex Crow"

	require.NoError(t, svc.HandleShipment(context.Background(), webhook))
	assert.Equal(t, []string{"fan@example.com"}, mailer.shipped)
}

func TestHandleShipmentIgnoresOtherEvents(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewRelayService(&fakeFulfillment{}, mailer, nil)

	require.NoError(t, svc.HandleShipment(context.Background(), request.PrintfulWebhook{
		Type: "order_created",
	}))
	require.NoError(t, svc.HandleShipment(context.Background(), request.PrintfulWebhook{
		Type: "package.shipped",
	}))
	assert.Empty(t, mailer.shipped)
}

func TestRelayOrderConfirmationIsDeduped(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	mailer := &fakeMailer{}
	svc := NewRelayService(fulfillment, mailer, NewMemoryAckStore())

	order := paidOrder()
	order.LineItems = order.LineItems[2:]
	for i := 0; i < 2; i++ {
		created, err := svc.RelayOrder(context.Background(), order)
		require.NoError(t, err)
		assert.Nil(t, created)
	}
	assert.Equal(t, []string{"fan@example.com"}, mailer.confirmations,
		"a redelivered webhook for a digital-only order must not email again")
}

func TestRelayOrderFallsBackToCustomerEmail(t *testing.T) {
	fulfillment := &fakeFulfillment{}
	mailer := &fakeMailer{}
	svc := NewRelayService(fulfillment, mailer, nil)

	order := paidOrder()
	order.Email = ""
	order.Customer = &request.ShopifyCustomer{Email: "crow@example.com", FirstName: "Alex"}
	created, err := svc.RelayOrder(context.Background(), order)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Len(t, fulfillment.created, 1)
	assert.Equal(t, "crow@example.com", fulfillment.created[0].Recipient.Email)
}
