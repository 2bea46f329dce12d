package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	adminController "github.com/ofblood/website/internal/admin/controller"
	adminRepository "github.com/ofblood/website/internal/admin/repository"
	adminService "github.com/ofblood/website/internal/admin/service"
	cartController "github.com/ofblood/website/internal/cart/controller"
	cartService "github.com/ofblood/website/internal/cart/service"
	"github.com/ofblood/website/internal/common"
	"github.com/ofblood/website/internal/config"
	"github.com/ofblood/website/internal/infra"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/middleware"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/printful"
	"github.com/ofblood/website/internal/resend"
	"github.com/ofblood/website/internal/shopify"
	"github.com/ofblood/website/internal/signature"
	merchController "github.com/ofblood/website/internal/merch/controller"
	merchService "github.com/ofblood/website/internal/merch/service"
	notificationController "github.com/ofblood/website/internal/notification/controller"
	notificationService "github.com/ofblood/website/internal/notification/service"
	orderController "github.com/ofblood/website/internal/order/controller"
	orderService "github.com/ofblood/website/internal/order/service"
)

func RunServer(c context.Context) {
	c, span := otel.Tracer.Start(c, "RunServer")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, common.AppWebsite).
		Str(log.KeyTag, "main RunServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, "website")
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(common.AppWebsite),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, common.AppWebsite, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			logger.Error().Err(err).Msg("failed shutting down cache")
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing vendor clients").Logger()
	logger.Info().Msg("initializing vendor clients")
	storefront, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		err = fmt.Errorf("failed initializing storefront client with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	fulfillment, err := printful.NewClient(cfg.Printful)
	if err != nil {
		err = fmt.Errorf("failed initializing fulfillment client with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	mailSender, err := resend.NewClient(cfg.Resend)
	if err != nil {
		err = fmt.Errorf("failed initializing mail client with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized vendor clients")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	carts := cartService.NewCartService(storefront, cartService.NewRedisIDStore(cache))
	merch := merchService.NewMerchService(storefront, cache)
	mailer := notificationService.NewMailerService(mailSender, cfg.Resend)
	relay := orderService.NewRelayService(fulfillment, mailer, orderService.NewRedisAckStore(cache))
	admin := adminService.NewAdminService(adminRepository.NewShowRepository(db), cfg.Admin)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing controllers").Logger()
	logger.Info().Msg("initializing controllers")
	cartController.AttachCartController(router, carts)
	merchController.AttachMerchController(router, merch)
	notificationController.AttachNotificationController(router, mailer)
	orderController.AttachOrderController(
		router,
		relay,
		carts,
		signature.NewShopifyVerifier(cfg.Shopify.WebhookSecret),
		signature.NewPrintfulVerifier(cfg.Printful.WebhookSecret),
	)
	adminController.AttachAdminController(
		router,
		admin,
		cfg.Admin.SessionSecret,
		cfg.Application.Env,
	)
	logger.Info().Msg("initialized controllers")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interruption signal, shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
