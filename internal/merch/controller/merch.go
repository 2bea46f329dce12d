package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/response"
	"github.com/ofblood/website/internal/merch/service"
)

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

type MerchController struct {
	service service.MerchService
}

func AttachMerchController(router *mux.Router, service service.MerchService) {
	controller := MerchController{service: service}

	sub := router.PathPrefix("/products").Subrouter()
	sub.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	sub.HandleFunc("/{handle}", controller.FindProductByHandle).Methods(http.MethodGet)
}

func (t MerchController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "MerchController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MerchController FindProducts").
		Logger()

	first := defaultPageSize
	if raw := r.URL.Query().Get("first"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			err = fmt.Errorf("invalid first=%s", raw)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		first = parsed
	}
	if first > maxPageSize {
		first = maxPageSize
	}

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msgf("finding first=%d products", first)
	c = logger.WithContext(c)
	products, err := t.service.Products(c, first)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d products", len(products))

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "products found",
		"data": map[string]interface{}{
			"products": products,
		},
	})
}

func (t MerchController) FindProductByHandle(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "MerchController FindProductByHandle")
	defer span.End()

	handle := mux.Vars(r)["handle"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MerchController FindProductByHandle").
		Str(log.KeyProcess, "finding product").
		Str(log.KeyHandle, handle).
		Logger()

	logger.Info().Msgf("finding product handle=%s", handle)
	c = logger.WithContext(c)
	product, err := t.service.Product(c, handle)
	if err != nil {
		err = fmt.Errorf("failed finding product handle=%s with error=%w", handle, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadGateway
		if errors.Is(err, commonErrors.ErrProductNotFound) {
			statusCode = http.StatusNotFound
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found product handle=%s", handle)

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product found",
		"data": map[string]interface{}{
			"product": product,
		},
	})
}
