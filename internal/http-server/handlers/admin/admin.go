package admin

import (
	"context"
	"log/slog"
	"net/http"
	"tgadmin/entity"
	"tgadmin/internal/http-server/middleware/authenticate"
	"tgadmin/lib/api/response"
	"tgadmin/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	AdminProfile(ctx context.Context, identity entity.Identity, adminId string) (*entity.AdminProfile, error)
	ChangePassword(ctx context.Context, identity entity.Identity, adminId string, change *entity.PasswordChange) error
}

type ProfileResponse struct {
	response.Response
	*entity.AdminProfile
}

func Profile(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
		mod := sl.Module("http.handlers.admin")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("admin_id", identity.AdminId),
			slog.String("id", id),
		)

		profile, err := handler.AdminProfile(r.Context(), identity, id)
		if err != nil {
			fail(w, r, logger.With(sl.Err(err)), "get profile", err)
			return
		}

		render.JSON(w, r, ProfileResponse{
			Response:     response.Ok(""),
			AdminProfile: profile,
		})
	}
}

func ChangePassword(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
		mod := sl.Module("http.handlers.admin")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("admin_id", identity.AdminId),
			slog.String("id", id),
		)

		var change entity.PasswordChange
		if err := render.Bind(r, &change); err != nil {
			logger.Warn("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BindError(err))
			return
		}

		if err := handler.ChangePassword(r.Context(), identity, id, &change); err != nil {
			fail(w, r, logger.With(sl.Err(err)), "change password", err)
			return
		}
		logger.Info("password changed")

		render.JSON(w, r, response.Ok("Password updated successfully"))
	}
}

func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	status, resp := response.FromError(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg)
	} else {
		logger.Warn(msg)
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
