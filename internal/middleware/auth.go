package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ofblood/website/internal/common"
	inErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
	"github.com/ofblood/website/internal/response"
	"github.com/ofblood/website/internal/session"
)

// AdminAuth guards admin routes with the signed session cookie. The secret
// is injected at wiring time so tests can substitute one.
func AdminAuth(sessionSecret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware AdminAuth").
				Logger()
			c := logger.WithContext(r.Context())

			cookie, err := r.Cookie(common.AdminSessionCookie)
			if err != nil {
				logger.Error().Err(inErrors.ErrTokenInvalid).Msg("missing session cookie")
				response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    "Unauthorized",
				})
				return
			}

			if err := session.Verify(sessionSecret, cookie.Value); err != nil {
				statusCode := http.StatusUnauthorized
				message := "Unauthorized"
				if err == inErrors.ErrSessionUnconfigured {
					statusCode = http.StatusInternalServerError
					message = "Internal Server Error"
				}
				logger.Error().Err(err).Msg(err.Error())
				response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": statusCode,
					"message":    message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
