package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/shopify"
	"github.com/ofblood/website/merch/pkg/response"
)

// cacheTTL matches the storefront's revalidation window.
const cacheTTL = 60 * time.Second

type ProductGateway interface {
	Products(c context.Context, first int) ([]shopify.Product, error)
	Product(c context.Context, handle string) (*shopify.Product, error)
}

type MerchService struct {
	gateway ProductGateway
	cache   *redis.Client
}

func NewMerchService(gateway ProductGateway, cache *redis.Client) MerchService {
	return MerchService{gateway: gateway, cache: cache}
}

func (svc MerchService) Products(c context.Context, first int) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "MerchService Products")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MerchService Products").
		Logger()

	cacheKey := fmt.Sprintf("merch:products:%d", first)
	logger = logger.With().Str(log.KeyProcess, "getting products from cache").Logger()
	cached, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil {
		products := []response.Product{}
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			logger.Info().Msg("got products from cache")
			return products, nil
		}
		logger.Warn().Msg("cached products are unreadable, refetching")
	} else if err != redis.Nil {
		logger.Warn().Err(err).Msg("cache unavailable, fetching from vendor")
	}

	logger = logger.With().Str(log.KeyProcess, "fetching products").Logger()
	logger.Info().Msg("fetching products from vendor")
	wire, err := svc.gateway.Products(c, first)
	if err != nil {
		err = fmt.Errorf("failed fetching products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("fetched %d products from vendor", len(wire))
	products := response.TransformProducts(wire)

	logger = logger.With().Str(log.KeyProcess, "caching products").Logger()
	encoded, err := json.Marshal(products)
	if err == nil {
		if err := svc.cache.Set(c, cacheKey, encoded, cacheTTL).Err(); err != nil {
			logger.Warn().Err(err).Msg("failed caching products")
		}
	}

	return products, nil
}

func (svc MerchService) Product(c context.Context, handle string) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "MerchService Product")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MerchService Product").
		Str(log.KeyHandle, handle).
		Logger()

	cacheKey := "merch:product:" + handle
	logger = logger.With().Str(log.KeyProcess, "getting product from cache").Logger()
	cached, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil {
		product := response.Product{}
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			logger.Info().Msg("got product from cache")
			return product, nil
		}
		logger.Warn().Msg("cached product is unreadable, refetching")
	} else if err != redis.Nil {
		logger.Warn().Err(err).Msg("cache unavailable, fetching from vendor")
	}

	logger = logger.With().Str(log.KeyProcess, "fetching product").Logger()
	logger.Info().Msg("fetching product from vendor")
	wire, err := svc.gateway.Product(c, handle)
	if err != nil {
		err = fmt.Errorf("failed fetching product handle=%s with error=%w", handle, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if wire == nil {
		err = commonErrors.ErrProductNotFound
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("fetched product from vendor")
	product := response.TransformProduct(wire)

	logger = logger.With().Str(log.KeyProcess, "caching product").Logger()
	encoded, err := json.Marshal(product)
	if err == nil {
		if err := svc.cache.Set(c, cacheKey, encoded, cacheTTL).Err(); err != nil {
			logger.Warn().Err(err).Msg("failed caching product")
		}
	}

	return product, nil
}
