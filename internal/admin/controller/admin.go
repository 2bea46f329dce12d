package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ofblood/website/internal/admin/service"
	"github.com/ofblood/website/admin/pkg/request"
	"github.com/ofblood/website/internal/common"
	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/middleware"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/response"
	"github.com/ofblood/website/internal/session"
)

type AdminController struct {
	service       service.AdminService
	sessionSecret string
	secureCookie  bool
}

func AttachAdminController(
	router *mux.Router,
	service service.AdminService,
	sessionSecret string,
	env string,
) {
	controller := AdminController{
		service:       service,
		sessionSecret: sessionSecret,
		secureCookie:  env != "development",
	}

	// The show listing is public; everything else under /admin needs a
	// valid session cookie.
	router.HandleFunc("/shows", controller.FindShows).Methods(http.MethodGet)

	admin := router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	admin.HandleFunc("/logout", controller.Logout).Methods(http.MethodPost)

	protected := admin.NewRoute().Subrouter()
	protected.Use(middleware.AdminAuth(sessionSecret))
	protected.HandleFunc("/session", controller.Session).Methods(http.MethodGet)
	protected.HandleFunc("/shows", controller.FindShows).Methods(http.MethodGet)
	protected.HandleFunc("/shows", controller.InsertShow).Methods(http.MethodPost)
	protected.HandleFunc("/shows/{showId}", controller.UpdateShow).Methods(http.MethodPut)
	protected.HandleFunc("/shows/{showId}", controller.DeleteShow).Methods(http.MethodDelete)
}

func (t AdminController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Login{}
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

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Info().Msg("logging in")
	c = logger.WithContext(c)
	token, err := t.service.Login(c, reqBody.Password)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrPasswordInvalid) {
			statusCode = http.StatusUnauthorized
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    "login failed",
		})
		return
	}
	logger.Info().Msg("logged in")

	http.SetCookie(w, &http.Cookie{
		Name:     common.AdminSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   t.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "logged in",
	})
}

func (t AdminController) Logout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController Logout")
	defer span.End()

	http.SetCookie(w, &http.Cookie{
		Name:     common.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "logged out",
	})
}

// Session reports whether the caller still holds a valid session. The auth
// middleware already rejected everyone else.
func (t AdminController) Session(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController Session")
	defer span.End()

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "session valid",
	})
}

func (t AdminController) FindShows(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController FindShows")
	defer span.End()

	upcomingOnly := r.URL.Query().Get("upcoming") == "true"
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController FindShows").
		Str(log.KeyProcess, "finding shows").
		Bool("upcomingOnly", upcomingOnly).
		Logger()

	logger.Info().Msg("finding shows")
	c = logger.WithContext(c)
	shows, err := t.service.FindShows(c, upcomingOnly)
	if err != nil {
		err = fmt.Errorf("failed finding shows with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d shows", len(shows))

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "shows found",
		"data": map[string]interface{}{
			"shows": shows,
		},
	})
}

func (t AdminController) InsertShow(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController InsertShow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController InsertShow").
		Logger()

	reqBody, ok := t.decodeShow(c, w, r, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "inserting show").Logger()
	logger.Info().Msg("inserting show")
	c = logger.WithContext(c)
	show, err := t.service.InsertShow(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed inserting show with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("inserted show")

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "show created",
		"data": map[string]interface{}{
			"show": show,
		},
	})
}

func (t AdminController) UpdateShow(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController UpdateShow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController UpdateShow").
		Logger()

	showID, ok := t.showID(c, w, r, logger)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyShowID, showID.String()).Logger()

	reqBody, ok := t.decodeShow(c, w, r, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating show").Logger()
	logger.Info().Msg("updating show")
	c = logger.WithContext(c)
	show, err := t.service.UpdateShow(c, showID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating show with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrShowNotFound) {
			statusCode = http.StatusNotFound
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated show")

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "show updated",
		"data": map[string]interface{}{
			"show": show,
		},
	})
}

func (t AdminController) DeleteShow(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController DeleteShow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController DeleteShow").
		Logger()

	showID, ok := t.showID(c, w, r, logger)
	if !ok {
		return
	}
	logger = logger.With().
		Str(log.KeyProcess, "deleting show").
		Str(log.KeyShowID, showID.String()).
		Logger()

	logger.Info().Msg("deleting show")
	c = logger.WithContext(c)
	if err := t.service.DeleteShow(c, showID); err != nil {
		err = fmt.Errorf("failed deleting show with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, commonErrors.ErrShowNotFound) {
			statusCode = http.StatusNotFound
		}
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("deleted show")

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "show deleted",
	})
}

func (t AdminController) decodeShow(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger zerolog.Logger,
) (request.Show, bool) {
	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Show{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.Show{}, false
	}

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.Show{}, false
	}
	logger.Info().Msg("validated request body")
	return reqBody, true
}

func (t AdminController) showID(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger zerolog.Logger,
) (uuid.UUID, bool) {
	logger = logger.With().Str(log.KeyProcess, "validating showId").Logger()
	logger.Info().Msg("validating showId")
	showID, err := uuid.Parse(mux.Vars(r)["showId"])
	if err != nil {
		err = fmt.Errorf("failed validating showId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return uuid.Nil, false
	}
	logger.Info().Msgf("validated showId=%s", showID.String())
	return showID, true
}
