package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ofblood/website/internal/admin/repository"
	"github.com/ofblood/website/admin/pkg/request"
	"github.com/ofblood/website/admin/pkg/response"
	"github.com/ofblood/website/internal/config"
	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/otel"
	"github.com/ofblood/website/internal/session"
)

type AdminService struct {
	repository repository.ShowRepository
	config     config.Admin
}

func NewAdminService(repository repository.ShowRepository, config config.Admin) AdminService {
	return AdminService{repository: repository, config: config}
}

// Login checks the shared admin password and issues a session token. An
// unset password means no login is possible at all.
func (svc AdminService) Login(c context.Context, password string) (string, error) {
	c, span := otel.Tracer.Start(c, "AdminService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService Login").
		Str(log.KeyProcess, "checking password").
		Logger()

	if svc.config.Password == "" {
		err := fmt.Errorf("admin password is not configured, refusing all logins")
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	if !svc.passwordMatches(password) {
		err := commonErrors.ErrPasswordInvalid
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("password accepted")

	logger = logger.With().Str(log.KeyProcess, "issuing session").Logger()
	token, err := session.Issue(svc.config.SessionSecret)
	if err != nil {
		err = fmt.Errorf("failed issuing session with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("issued session")
	return token, nil
}

// passwordMatches supports both a bcrypt hash and a plain shared secret.
// Hashes are recognized by their $2 prefix; anything else is compared in
// constant time.
func (svc AdminService) passwordMatches(password string) bool {
	if strings.HasPrefix(svc.config.Password, "$2") {
		return bcrypt.CompareHashAndPassword(
			[]byte(svc.config.Password),
			[]byte(password),
		) == nil
	}
	return subtle.ConstantTimeCompare([]byte(svc.config.Password), []byte(password)) == 1
}

func (svc AdminService) InsertShow(
	c context.Context,
	param request.Show,
) (response.Show, error) {
	c, span := otel.Tracer.Start(c, "AdminService InsertShow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService InsertShow").
		Str(log.KeyProcess, "inserting show").
		Logger()

	logger.Info().Msgf("inserting show at venue=%s", param.Venue)
	show, err := svc.repository.InsertShow(c, param)
	if err != nil {
		err = fmt.Errorf("failed inserting show with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Show{}, err
	}
	logger.Info().Str(log.KeyShowID, show.ID.String()).Msg("inserted show")
	return show.Response(), nil
}

func (svc AdminService) FindShows(c context.Context, upcomingOnly bool) ([]response.Show, error) {
	c, span := otel.Tracer.Start(c, "AdminService FindShows")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService FindShows").
		Str(log.KeyProcess, "finding shows").
		Bool("upcomingOnly", upcomingOnly).
		Logger()

	logger.Info().Msg("finding shows")
	shows, err := svc.repository.FindShows(c, upcomingOnly)
	if err != nil {
		err = fmt.Errorf("failed finding shows with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d shows", len(shows))

	responses := make([]response.Show, 0, len(shows))
	for _, show := range shows {
		responses = append(responses, show.Response())
	}
	return responses, nil
}

func (svc AdminService) UpdateShow(
	c context.Context,
	id uuid.UUID,
	param request.Show,
) (response.Show, error) {
	c, span := otel.Tracer.Start(c, "AdminService UpdateShow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService UpdateShow").
		Str(log.KeyProcess, "updating show").
		Str(log.KeyShowID, id.String()).
		Logger()

	logger.Info().Msg("updating show")
	show, err := svc.repository.UpdateShow(c, id, param)
	if err != nil {
		err = fmt.Errorf("failed updating show id=%s with error=%w", id.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Show{}, err
	}
	logger.Info().Msg("updated show")
	return show.Response(), nil
}

func (svc AdminService) DeleteShow(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "AdminService DeleteShow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService DeleteShow").
		Str(log.KeyProcess, "deleting show").
		Str(log.KeyShowID, id.String()).
		Logger()

	logger.Info().Msg("deleting show")
	if err := svc.repository.DeleteShow(c, id); err != nil {
		err = fmt.Errorf("failed deleting show id=%s with error=%w", id.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted show")
	return nil
}
