package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ofblood/website/internal/config"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/resend"
	notificationRequest "github.com/ofblood/website/notification/pkg/request"
	orderRequest "github.com/ofblood/website/order/pkg/request"
)

// Sender is the slice of the Resend client the mailer needs.
type Sender interface {
	SendEmail(c context.Context, email resend.Email) error
	AddAudienceContact(c context.Context, email string, firstName string) error
}

type MailerService struct {
	sender Sender
	config config.Resend
}

func NewMailerService(sender Sender, config config.Resend) MailerService {
	return MailerService{sender: sender, config: config}
}

// OrderConfirmation emails the customer a summary of what they bought.
func (svc MailerService) OrderConfirmation(
	c context.Context,
	order orderRequest.ShopifyOrder,
) error {
	c, span := otel.Tracer.Start(c, "MailerService OrderConfirmation")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MailerService OrderConfirmation").
		Str(log.KeyProcess, "sending confirmation email").
		Str(log.KeyEmail, order.Email).
		Logger()

	lines := strings.Builder{}
	for _, item := range order.LineItems {
		lines.WriteString(fmt.Sprintf(
			"<li>%s &times; %d</li>",
			html.EscapeString(item.Title),
			item.Quantity,
		))
	}

	logger.Info().Msg("sending confirmation email")
	err := svc.sender.SendEmail(c, resend.Email{
		From:    svc.config.FromOrders,
		To:      order.Email,
		Subject: fmt.Sprintf("Order #%d confirmed", order.OrderNumber),
		Html: fmt.Sprintf(
			`<h1>Thanks for your order</h1>
<p>Order #%d is confirmed. Here is what you got:</p>
<ul>%s</ul>
<p>Total: %s %s</p>
<p>We will email you again once everything ships.</p>`,
			order.OrderNumber,
			lines.String(),
			html.EscapeString(order.TotalPrice),
			html.EscapeString(order.Currency),
		),
	})
	if err != nil {
		err = fmt.Errorf("failed sending confirmation email with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("sent confirmation email")
	return nil
}

// OrderShipped emails the customer their tracking link.
func (svc MailerService) OrderShipped(
	c context.Context,
	email string,
	name string,
	shipment orderRequest.PrintfulShipment,
) error {
	c, span := otel.Tracer.Start(c, "MailerService OrderShipped")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MailerService OrderShipped").
		Str(log.KeyProcess, "sending shipped email").
		Str(log.KeyEmail, email).
		Logger()

	greeting := "Hey"
	if name != "" {
		greeting = "Hey " + html.EscapeString(name)
	}

	logger.Info().Msg("sending shipped email")
	err := svc.sender.SendEmail(c, resend.Email{
		From:    svc.config.FromOrders,
		To:      email,
		Subject: "Your order has shipped",
		Html: fmt.Sprintf(
			`<h1>It's on the way</h1>
<p>%s, your order just shipped via %s.</p>
<p>Tracking number: %s</p>
<p><a href="%s">Track your package</a></p>`,
			greeting,
			html.EscapeString(shipment.Carrier),
			html.EscapeString(shipment.TrackingNumber),
			html.EscapeString(shipment.TrackingURL),
		),
	})
	if err != nil {
		err = fmt.Errorf("failed sending shipped email with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("sent shipped email")
	return nil
}

// ContactInquiry forwards a contact form submission to the band inbox and
// auto-replies to the sender. The auto-reply is best-effort.
func (svc MailerService) ContactInquiry(
	c context.Context,
	inquiry notificationRequest.Contact,
) error {
	c, span := otel.Tracer.Start(c, "MailerService ContactInquiry")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MailerService ContactInquiry").
		Str(log.KeyProcess, "forwarding inquiry").
		Str(log.KeyEmail, inquiry.Email).
		Logger()

	subject := "New contact form message"
	switch inquiry.Type {
	case "booking":
		subject = "New booking inquiry"
	case "press":
		subject = "New press inquiry"
	}

	logger.Info().Msg("forwarding inquiry to inbox")
	err := svc.sender.SendEmail(c, resend.Email{
		From:    svc.config.FromSite,
		To:      svc.config.ContactInbox,
		ReplyTo: inquiry.Email,
		Subject: subject,
		Html: fmt.Sprintf(
			`<p><strong>From:</strong> %s &lt;%s&gt;</p><p><strong>Type:</strong> %s</p><p>%s</p>`,
			html.EscapeString(inquiry.Name),
			html.EscapeString(inquiry.Email),
			html.EscapeString(inquiry.Type),
			html.EscapeString(inquiry.Message),
		),
	})
	if err != nil {
		err = fmt.Errorf("failed forwarding inquiry with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("forwarded inquiry to inbox")

	logger = logger.With().Str(log.KeyProcess, "sending auto reply").Logger()
	logger.Info().Msg("sending auto reply")
	err = svc.sender.SendEmail(c, resend.Email{
		From:    svc.config.FromSite,
		To:      inquiry.Email,
		Subject: "We got your message",
		Html: fmt.Sprintf(
			`<p>Hey %s,</p><p>Thanks for reaching out. We read everything and reply when we can.</p>`,
			html.EscapeString(inquiry.Name),
		),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed sending auto reply")
		return nil
	}
	logger.Info().Msg("sent auto reply")
	return nil
}

// Subscribe adds an address to the newsletter audience.
func (svc MailerService) Subscribe(c context.Context, email string, firstName string) error {
	c, span := otel.Tracer.Start(c, "MailerService Subscribe")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MailerService Subscribe").
		Str(log.KeyProcess, "subscribing email").
		Str(log.KeyEmail, email).
		Logger()

	logger.Info().Msg("subscribing email to newsletter")
	if err := svc.sender.AddAudienceContact(c, email, firstName); err != nil {
		err = fmt.Errorf("failed subscribing email with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed email to newsletter")
	return nil
}
