package authenticate

import (
	"log/slog"
	"net/http"
	"strings"
	"tgadmin/entity"
	"tgadmin/lib/api/response"
	"tgadmin/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.Identity, error)
}

// HandlerFunc is a protected handler; it receives the identity of the caller.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, identity entity.Identity)

type Gate struct {
	log  *slog.Logger
	auth Authenticate
}

func New(log *slog.Logger, auth Authenticate) *Gate {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")
	return &Gate{
		log:  log.With(mod),
		auth: auth,
	}
}

// Wrap verifies the bearer token before calling next. Any failure is answered
// with the same 401 body, next is not called.
func (g *Gate) Wrap(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := g.log.With(
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			logger.Debug("bearer token not found")
			authFailed(w, r)
			return
		}

		if g.auth == nil {
			logger.Error("authentication not enabled")
			authFailed(w, r)
			return
		}

		identity, err := g.auth.AuthenticateByToken(token)
		if err != nil {
			logger.With(
				sl.Secret("token", token),
				sl.Err(err),
			).Debug("token rejected")
			authFailed(w, r)
			return
		}

		w.Header().Set("X-Request-ID", middleware.GetReqID(r.Context()))
		next(w, r, *identity)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authFailed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error("Unauthorized"))
}
