package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofblood/website/internal/config"
	"github.com/ofblood/website/internal/resend"
	notificationRequest "github.com/ofblood/website/notification/pkg/request"
	orderRequest "github.com/ofblood/website/order/pkg/request"
)

type fakeSender struct {
	emails     []resend.Email
	contacts   []string
	sendErr    error
	contactErr error
}

func (f *fakeSender) SendEmail(c context.Context, email resend.Email) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeSender) AddAudienceContact(c context.Context, email string, firstName string) error {
	if f.contactErr != nil {
		return f.contactErr
	}
	f.contacts = append(f.contacts, email)
	return nil
}

func mailerConfig() config.Resend {
	return config.Resend{
		FromOrders:   "orders@ofblood.example",
		FromSite:     "site@ofblood.example",
		ContactInbox: "band@ofblood.example",
	}
}

func TestOrderConfirmation(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailerService(sender, mailerConfig())

	err := svc.OrderConfirmation(context.Background(), orderRequest.ShopifyOrder{
		OrderNumber: 7,
		Email:       "fan@example.com",
		TotalPrice:  "54.00",
		Currency:    "USD",
		LineItems: []orderRequest.ShopifyLineItem{
			{Title: "Eternal Night Tee <XL>", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.emails, 1)

	email := sender.emails[0]
	assert.Equal(t, "orders@ofblood.example", email.From)
	assert.Equal(t, "fan@example.com", email.To)
	assert.Equal(t, "Order #7 confirmed", email.Subject)
	assert.Contains(t, email.Html, "Eternal Night Tee &lt;XL&gt;")
	assert.NotContains(t, email.Html, "<XL>", "titles must be escaped")
}

func TestOrderShipped(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailerService(sender, mailerConfig())

	err := svc.OrderShipped(context.Background(), "fan@example.com", "Alex",
		orderRequest.PrintfulShipment{
			Carrier:        "USPS",
			TrackingNumber: "9400100000000000000000",
			TrackingURL:    "https://tools.usps.com/track",
		})
	require.NoError(t, err)
	require.Len(t, sender.emails, 1)
	assert.Contains(t, sender.emails[0].Html, "Hey Alex")
	assert.Contains(t, sender.emails[0].Html, "https://tools.usps.com/track")
}

func TestContactInquiry(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailerService(sender, mailerConfig())

	err := svc.ContactInquiry(context.Background(), notificationRequest.Contact{
		Name:    "Alex",
		Email:   "fan@example.com",
		Type:    "booking",
		Message: "Play in Portland again",
	})
	require.NoError(t, err)
	require.Len(t, sender.emails, 2, "inbox forward plus auto reply")

	forward := sender.emails[0]
	assert.Equal(t, "band@ofblood.example", forward.To)
	assert.Equal(t, "fan@example.com", forward.ReplyTo)
	assert.Equal(t, "New booking inquiry", forward.Subject)
	assert.Contains(t, forward.Html, "Play in Portland again")

	autoReply := sender.emails[1]
	assert.Equal(t, "fan@example.com", autoReply.To)
}

func TestContactInquiryFailsWhenForwardFails(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("resend down")}
	svc := NewMailerService(sender, mailerConfig())

	err := svc.ContactInquiry(context.Background(), notificationRequest.Contact{
		Name:    "Alex",
		Email:   "fan@example.com",
		Type:    "general",
		Message: "hello",
	})
	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailerService(sender, mailerConfig())

	require.NoError(t, svc.Subscribe(context.Background(), "fan@example.com", "Alex"))
	assert.Equal(t, []string{"fan@example.com"}, sender.contacts)

	sender.contactErr = errors.New("audience missing")
	assert.Error(t, svc.Subscribe(context.Background(), "fan@example.com", "Alex"))
}
