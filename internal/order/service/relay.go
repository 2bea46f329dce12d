package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/printful"
	"github.com/ofblood/website/order/pkg/request"
)

// printfulVariantProperty is the line item property the storefront stamps on
// every fulfillable product. Items without it are not printed goods.
const printfulVariantProperty = "_printful_variant_id"

// shipmentEvent is the Printful event name for an outbound package, dotted
// as the vendor sends it.
const shipmentEvent = "package.shipped"

// FulfillmentGateway is the slice of the Printful client the relay needs.
type FulfillmentGateway interface {
	CreateOrder(c context.Context, order printful.CreateOrderRequest) (*printful.Order, error)
	Order(c context.Context, externalID string) (*printful.Order, error)
}

// Mailer sends the customer-facing order emails. Delivery is best-effort;
// the relay never fails an order because an email bounced.
type Mailer interface {
	OrderConfirmation(c context.Context, order request.ShopifyOrder) error
	OrderShipped(
		c context.Context,
		email string,
		name string,
		shipment request.PrintfulShipment,
	) error
}

type RelayService struct {
	fulfillment FulfillmentGateway
	mailer      Mailer
	acks        AckStore
}

func NewRelayService(fulfillment FulfillmentGateway, mailer Mailer, acks AckStore) RelayService {
	return RelayService{fulfillment: fulfillment, mailer: mailer, acks: acks}
}

// RelayOrder forwards a paid commerce order to fulfillment. Unpaid orders
// and orders with no fulfillable items are acknowledged without creating
// anything. Redelivered webhooks find the existing order by external id
// instead of creating a duplicate.
func (svc RelayService) RelayOrder(
	c context.Context,
	order request.ShopifyOrder,
) (*printful.Order, error) {
	c, span := otel.Tracer.Start(c, "RelayService RelayOrder")
	defer span.End()

	externalID := strconv.FormatInt(order.ID, 10)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RelayService RelayOrder").
		Str(log.KeyOrderID, externalID).
		Logger()

	if !strings.EqualFold(order.FinancialStatus, "paid") {
		logger.Info().
			Msgf("skipping order with financial_status=%s, only paid orders are relayed", order.FinancialStatus)
		return nil, nil
	}

	logger = logger.With().Str(log.KeyProcess, "checking for existing fulfillment order").Logger()
	logger.Info().Msg("checking for existing fulfillment order")
	existing, err := svc.fulfillment.Order(c, externalID)
	if err != nil {
		err = fmt.Errorf("failed checking existing fulfillment order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if existing != nil {
		logger.Info().Msgf("fulfillment order already exists with id=%d, skipping", existing.ID)
		return existing, nil
	}

	logger = logger.With().Str(log.KeyProcess, "mapping line items").Logger()
	items := make([]printful.Item, 0, len(order.LineItems))
	for _, line := range order.LineItems {
		variantID, ok := fulfillmentVariant(line)
		if !ok {
			logger.Warn().
				Msgf("line item %q has no usable %s property, skipping it", line.Title, printfulVariantProperty)
			continue
		}
		items = append(items, printful.Item{VariantID: variantID, Quantity: line.Quantity})
	}
	if len(items) == 0 {
		logger.Info().Msg("no fulfillable line items, nothing to relay")
		// No fulfillment order exists to dedupe against here, so the ack
		// store keeps redeliveries from emailing the customer twice.
		if svc.firstConfirmation(c, logger, externalID) {
			svc.sendConfirmation(c, logger, order)
		}
		return nil, nil
	}

	if order.ShippingAddress == nil {
		err = fmt.Errorf("order has fulfillable items but no shipping address")
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "creating fulfillment order").Logger()
	logger.Info().Msgf("creating fulfillment order with %d items", len(items))
	created, err := svc.fulfillment.CreateOrder(c, printful.CreateOrderRequest{
		ExternalID: externalID,
		Recipient:  recipient(order),
		Items:      items,
		RetailCosts: &printful.RetailCosts{
			Currency: order.Currency,
			Subtotal: order.SubtotalPrice,
			Tax:      order.TotalTax,
		},
		Confirm: true,
	})
	if err != nil {
		err = fmt.Errorf("failed creating fulfillment order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("created fulfillment order with id=%d", created.ID)

	svc.sendConfirmation(c, logger, order)
	return created, nil
}

// HandleShipment reacts to fulfillment webhooks. Only package.shipped
// triggers anything; the customer gets a tracking email.
func (svc RelayService) HandleShipment(c context.Context, webhook request.PrintfulWebhook) error {
	c, span := otel.Tracer.Start(c, "RelayService HandleShipment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RelayService HandleShipment").
		Str(log.KeyEventType, webhook.Type).
		Logger()

	if webhook.Type != shipmentEvent {
		logger.Info().Msgf("ignoring event type=%s", webhook.Type)
		return nil
	}
	if webhook.Data.Shipment == nil || webhook.Data.Order == nil {
		logger.Warn().Msg("shipment event is missing shipment or order data, ignoring")
		return nil
	}
	email := webhook.Data.Order.Recipient.Email
	if email == "" {
		logger.Warn().Msg("shipment event has no recipient email, ignoring")
		return nil
	}
	if svc.mailer == nil {
		return nil
	}

	logger = logger.With().
		Str(log.KeyProcess, "sending shipped email").
		Str(log.KeyEmail, email).
		Logger()
	logger.Info().Msg("sending shipped email")
	err := svc.mailer.OrderShipped(c, email, webhook.Data.Order.Recipient.Name, *webhook.Data.Shipment)
	if err != nil {
		err = fmt.Errorf("failed sending shipped email with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("sent shipped email")
	return nil
}

// firstConfirmation reports whether this is the first time the order id is
// being confirmed. Without an ack store, or when the store errs, it answers
// true so a flaky cache never swallows the email.
func (svc RelayService) firstConfirmation(
	c context.Context,
	logger zerolog.Logger,
	externalID string,
) bool {
	if svc.acks == nil {
		return true
	}
	first, err := svc.acks.MarkConfirmed(c, externalID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed recording confirmation ack, sending anyway")
		return true
	}
	if !first {
		logger.Info().Msg("order already confirmed, skipping confirmation email")
	}
	return first
}

func (svc RelayService) sendConfirmation(
	c context.Context,
	logger zerolog.Logger,
	order request.ShopifyOrder,
) {
	if order.Email == "" && order.Customer != nil {
		order.Email = order.Customer.Email
	}
	if svc.mailer == nil || order.Email == "" {
		return
	}
	logger = logger.With().
		Str(log.KeyProcess, "sending confirmation email").
		Str(log.KeyEmail, order.Email).
		Logger()
	logger.Info().Msg("sending confirmation email")
	if err := svc.mailer.OrderConfirmation(c, order); err != nil {
		logger.Warn().Err(err).Msg("failed sending confirmation email")
		return
	}
	logger.Info().Msg("sent confirmation email")
}

func fulfillmentVariant(line request.ShopifyLineItem) (int64, bool) {
	for _, property := range line.Properties {
		if property.Name != printfulVariantProperty {
			continue
		}
		variantID, err := strconv.ParseInt(property.Value, 10, 64)
		if err != nil || variantID <= 0 {
			return 0, false
		}
		return variantID, true
	}
	return 0, false
}

func recipient(order request.ShopifyOrder) printful.Address {
	address := order.ShippingAddress
	name := address.Name
	if name == "" {
		name = strings.TrimSpace(address.FirstName + " " + address.LastName)
	}
	email := order.Email
	if email == "" && order.Customer != nil {
		email = order.Customer.Email
	}
	return printful.Address{
		Name:        name,
		Company:     address.Company,
		Address1:    address.Address1,
		Address2:    address.Address2,
		City:        address.City,
		StateCode:   address.ProvinceCode,
		StateName:   address.Province,
		CountryCode: address.CountryCode,
		Zip:         address.Zip,
		Phone:       address.Phone,
		Email:       email,
	}
}
