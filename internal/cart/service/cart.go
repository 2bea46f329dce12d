package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ofblood/website/cart/pkg/response"
	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/shopify"
)

// Gateway is the slice of the storefront client the cart needs.
type Gateway interface {
	CreateCart(c context.Context) (*shopify.Cart, error)
	Cart(c context.Context, cartID string) (*shopify.Cart, error)
	AddLine(c context.Context, cartID, variantID string, quantity int) (*shopify.Cart, error)
	UpdateLine(c context.Context, cartID, lineID string, quantity int) (*shopify.Cart, error)
	RemoveLine(c context.Context, cartID, lineID string) (*shopify.Cart, error)
}

// CartService owns the canonical cart snapshot. All mutations go through the
// vendor first; the snapshot is only ever replaced by a transformed vendor
// response, never edited in place.
type CartService struct {
	gateway Gateway
	ids     IDStore

	mu         sync.RWMutex
	snapshot   response.Cart
	refreshing atomic.Bool
}

func NewCartService(gateway Gateway, ids IDStore) *CartService {
	return &CartService{gateway: gateway, ids: ids, snapshot: response.Empty()}
}

// Snapshot returns the current cart without touching the vendor.
func (svc *CartService) Snapshot() response.Cart {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.snapshot
}

func (svc *CartService) setSnapshot(cart response.Cart) {
	svc.mu.Lock()
	svc.snapshot = cart
	svc.mu.Unlock()
}

// AddItem adds a variant to the cart, lazily creating the cart on first use.
func (svc *CartService) AddItem(
	c context.Context,
	variantID string,
	quantity int,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyVariantID, variantID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if variantID == "" {
		err := commonErrors.ErrEmptyVariantID
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if quantity < 1 {
		err := commonErrors.ErrInvalidQuantity
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "resolving cartId").Logger()
	cartID, err := svc.ids.Get(c)
	if err != nil {
		err = fmt.Errorf("failed resolving cartId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if cartID == "" {
		logger = logger.With().Str(log.KeyProcess, "creating cart").Logger()
		logger.Info().Msg("no cart yet, creating one")
		wire, err := svc.gateway.CreateCart(c)
		if err != nil {
			err = fmt.Errorf("failed creating cart with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		cartID = wire.ID
		if err := svc.ids.Set(c, cartID); err != nil {
			err = fmt.Errorf("failed storing cartId=%s with error=%w", cartID, err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Str(log.KeyCartID, cartID).Msg("created cart")
	}

	logger = logger.With().
		Str(log.KeyProcess, "adding line").
		Str(log.KeyCartID, cartID).
		Logger()
	logger.Info().Msg("adding line to cart")
	wire, err := svc.gateway.AddLine(c, cartID, variantID, quantity)
	if err != nil {
		err = fmt.Errorf("failed adding variantId=%s to cartId=%s with error=%w", variantID, cartID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("added line to cart")

	cart, err := response.Transform(wire)
	if err != nil {
		err = fmt.Errorf("failed transforming cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	svc.setSnapshot(cart)
	return cart, nil
}

// UpdateItem changes a line's quantity. Quantity zero is rejected here; the
// controller routes it to RemoveItem instead.
func (svc *CartService) UpdateItem(
	c context.Context,
	lineID string,
	quantity int,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyLineID, lineID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if quantity < 1 {
		err := commonErrors.ErrInvalidQuantity
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	cartID, err := svc.requireCartID(c)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().
		Str(log.KeyProcess, "updating line").
		Str(log.KeyCartID, cartID).
		Logger()
	logger.Info().Msg("updating line quantity")
	wire, err := svc.gateway.UpdateLine(c, cartID, lineID, quantity)
	if err != nil {
		err = fmt.Errorf("failed updating lineId=%s in cartId=%s with error=%w", lineID, cartID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("updated line quantity")

	cart, err := response.Transform(wire)
	if err != nil {
		err = fmt.Errorf("failed transforming cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	svc.setSnapshot(cart)
	return cart, nil
}

// RemoveItem deletes a line from the cart.
func (svc *CartService) RemoveItem(c context.Context, lineID string) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyLineID, lineID).
		Logger()

	cartID, err := svc.requireCartID(c)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().
		Str(log.KeyProcess, "removing line").
		Str(log.KeyCartID, cartID).
		Logger()
	logger.Info().Msg("removing line from cart")
	wire, err := svc.gateway.RemoveLine(c, cartID, lineID)
	if err != nil {
		err = fmt.Errorf("failed removing lineId=%s from cartId=%s with error=%w", lineID, cartID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("removed line from cart")

	cart, err := response.Transform(wire)
	if err != nil {
		err = fmt.Errorf("failed transforming cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	svc.setSnapshot(cart)
	return cart, nil
}

// Refresh re-fetches the cart from the vendor. Concurrent refreshes collapse
// into one: latecomers get the current snapshot while a fetch is in flight.
// A stored identifier the vendor no longer recognizes is cleared so the next
// add starts a fresh cart.
func (svc *CartService) Refresh(c context.Context) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Refresh")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Refresh").
		Logger()

	if !svc.refreshing.CompareAndSwap(false, true) {
		logger.Debug().Msg("refresh already in flight, returning snapshot")
		return svc.Snapshot(), nil
	}
	defer svc.refreshing.Store(false)

	cartID, err := svc.ids.Get(c)
	if err != nil {
		err = fmt.Errorf("failed resolving cartId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if cartID == "" {
		svc.setSnapshot(response.Empty())
		return svc.Snapshot(), nil
	}

	logger = logger.With().
		Str(log.KeyProcess, "fetching cart").
		Str(log.KeyCartID, cartID).
		Logger()
	logger.Info().Msg("fetching cart")
	wire, err := svc.gateway.Cart(c, cartID)
	if err != nil {
		if errors.Is(err, commonErrors.ErrCartNotFound) {
			logger.Warn().Msg("stored cartId is stale, clearing it")
			if clearErr := svc.ids.Clear(c); clearErr != nil {
				clearErr = fmt.Errorf("failed clearing stale cartId with error=%w", clearErr)
				otel.RecordError(clearErr, span)
				logger.Error().Err(clearErr).Msg(clearErr.Error())
				return response.Cart{}, clearErr
			}
			svc.setSnapshot(response.Empty())
			return svc.Snapshot(), nil
		}
		err = fmt.Errorf("failed fetching cartId=%s with error=%w", cartID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("fetched cart")

	cart, err := response.Transform(wire)
	if err != nil {
		err = fmt.Errorf("failed transforming cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	svc.setSnapshot(cart)
	return cart, nil
}

// Clear forgets the stored cart identifier and resets the snapshot. Used
// after checkout completes.
func (svc *CartService) Clear(c context.Context) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	if err := svc.ids.Clear(c); err != nil {
		err = fmt.Errorf("failed clearing cartId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	svc.setSnapshot(response.Empty())
	logger.Info().Msg("cleared cart")
	return svc.Snapshot(), nil
}

// CheckoutURL resolves the checkout link for the given cart identifier.
func (svc *CartService) CheckoutURL(c context.Context, cartID string) (string, error) {
	c, span := otel.Tracer.Start(c, "CartService CheckoutURL")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService CheckoutURL").
		Str(log.KeyCartID, cartID).
		Logger()

	if cartID == "" {
		err := commonErrors.ErrNoCartID
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	logger = logger.With().Str(log.KeyProcess, "fetching cart").Logger()
	logger.Info().Msg("fetching cart for checkout")
	wire, err := svc.gateway.Cart(c, cartID)
	if err != nil {
		err = fmt.Errorf("failed fetching cartId=%s with error=%w", cartID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("fetched cart for checkout")
	return wire.CheckoutURL, nil
}

func (svc *CartService) requireCartID(c context.Context) (string, error) {
	cartID, err := svc.ids.Get(c)
	if err != nil {
		return "", fmt.Errorf("failed resolving cartId with error=%w", err)
	}
	if cartID == "" {
		return "", commonErrors.ErrNoCartID
	}
	return cartID, nil
}
