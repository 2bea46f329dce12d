package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	cartService "github.com/ofblood/website/internal/cart/service"
	cartRequest "github.com/ofblood/website/cart/pkg/request"
	"github.com/ofblood/website/internal/common"
	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/response"
	"github.com/ofblood/website/internal/signature"
	"github.com/ofblood/website/internal/order/service"
	"github.com/ofblood/website/order/pkg/request"
)

// maxWebhookBody caps how much of a webhook payload is read before the
// signature check.
const maxWebhookBody = 5 * 1024 * 1024

type OrderController struct {
	relay            service.RelayService
	cart             *cartService.CartService
	shopifyVerifier  signature.Verifier
	printfulVerifier signature.Verifier
}

func AttachOrderController(
	router *mux.Router,
	relay service.RelayService,
	cart *cartService.CartService,
	shopifyVerifier signature.Verifier,
	printfulVerifier signature.Verifier,
) {
	controller := OrderController{
		relay:            relay,
		cart:             cart,
		shopifyVerifier:  shopifyVerifier,
		printfulVerifier: printfulVerifier,
	}

	router.HandleFunc("/orders", controller.Checkout).Methods(http.MethodPost)

	webhooks := router.PathPrefix("/webhooks").Subrouter()
	webhooks.HandleFunc("/shopify", controller.ShopifyWebhook).Methods(http.MethodPost)
	webhooks.HandleFunc("/printful", controller.PrintfulWebhook).Methods(http.MethodPost)
}

// ShopifyWebhook receives commerce order events. After the signature check
// passes the response is always 200: the vendor retries non-2xx deliveries
// and a relay failure is our problem, not theirs.
func (t OrderController) ShopifyWebhook(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ShopifyWebhook")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController ShopifyWebhook").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying signature").Logger()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		err = fmt.Errorf("failed reading webhook body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "unreadable body",
		})
		return
	}
	if err := t.shopifyVerifier.Verify(body, r.Header.Get(common.HeaderShopifyHmac)); err != nil {
		err = fmt.Errorf("failed verifying webhook signature with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusUnauthorized
		if errors.Is(err, commonErrors.ErrSecretUnconfigured) {
			statusCode = http.StatusInternalServerError
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    "invalid signature",
		})
		return
	}
	logger.Info().Msg("verified webhook signature")

	logger = logger.With().Str(log.KeyProcess, "decoding webhook body").Logger()
	order := request.ShopifyOrder{}
	if err := json.Unmarshal(body, &order); err != nil {
		err = fmt.Errorf("failed decoding webhook body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "malformed payload",
		})
		return
	}
	logger.Info().Msgf("decoded webhook for orderId=%d", order.ID)

	logger = logger.With().Str(log.KeyProcess, "relaying order").Logger()
	logger.Info().Msg("relaying order to fulfillment")
	c = logger.WithContext(c)
	created, err := t.relay.RelayOrder(c, order)
	if err != nil {
		err = fmt.Errorf("failed relaying orderId=%d with error=%w", order.ID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusOK,
			"message":    "accepted, relay failed",
		})
		return
	}
	logger.Info().Msg("relayed order")

	body200 := map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "accepted",
	}
	if created != nil {
		body200["data"] = map[string]interface{}{"printfulOrderId": created.ID}
	}
	response.WriteJsonResponse(c, w, map[string]string{}, body200)
}

// PrintfulWebhook receives fulfillment events, of which only shipments are
// acted on. Same always-200-after-auth policy as the commerce webhook.
func (t OrderController) PrintfulWebhook(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController PrintfulWebhook")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController PrintfulWebhook").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying signature").Logger()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		err = fmt.Errorf("failed reading webhook body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "unreadable body",
		})
		return
	}
	if err := t.printfulVerifier.Verify(body, r.Header.Get(common.HeaderPrintfulSignature)); err != nil {
		err = fmt.Errorf("failed verifying webhook signature with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusUnauthorized
		if errors.Is(err, commonErrors.ErrSecretUnconfigured) {
			statusCode = http.StatusInternalServerError
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    "invalid signature",
		})
		return
	}
	logger.Info().Msg("verified webhook signature")

	logger = logger.With().Str(log.KeyProcess, "decoding webhook body").Logger()
	webhook := request.PrintfulWebhook{}
	if err := json.Unmarshal(body, &webhook); err != nil {
		err = fmt.Errorf("failed decoding webhook body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "malformed payload",
		})
		return
	}
	logger.Info().Msgf("decoded webhook type=%s", webhook.Type)

	logger = logger.With().Str(log.KeyProcess, "handling shipment").Logger()
	c = logger.WithContext(c)
	if err := t.relay.HandleShipment(c, webhook); err != nil {
		err = fmt.Errorf("failed handling shipment with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusOK,
			"message":    "accepted, handling failed",
		})
		return
	}

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "accepted",
	})
}

// Checkout resolves the vendor checkout link for a cart so the storefront
// can hand the customer off to hosted checkout.
func (t OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := cartRequest.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "resolving checkout url").
		Str(log.KeyCartID, reqBody.CartID).
		Logger()
	logger.Info().Msg("resolving checkout url")
	c = logger.WithContext(c)
	checkoutURL, err := t.cart.CheckoutURL(c, reqBody.CartID)
	if err != nil {
		err = fmt.Errorf("failed resolving checkout url for cartId=%s with error=%w", reqBody.CartID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadGateway
		if errors.Is(err, commonErrors.ErrNoCartID) {
			statusCode = http.StatusBadRequest
		}
		if errors.Is(err, commonErrors.ErrCartNotFound) {
			statusCode = http.StatusNotFound
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("resolved checkout url")

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "checkout ready",
		"data": map[string]interface{}{
			"cartId":      reqBody.CartID,
			"checkoutUrl": checkoutURL,
		},
	})
}
