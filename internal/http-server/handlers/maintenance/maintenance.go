package maintenance

import (
	"context"
	"log/slog"
	"net/http"
	"tgadmin/entity"
	"tgadmin/internal/http-server/middleware/authenticate"
	"tgadmin/lib/api/response"
	"tgadmin/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	UpdateMaintenance(ctx context.Context, update *entity.MaintenanceUpdate) error
	Maintenance(ctx context.Context) ([]*entity.Maintenance, error)
}

func Update(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
		mod := sl.Module("http.handlers.maintenance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("admin_id", identity.AdminId),
		)

		var update entity.MaintenanceUpdate
		if err := render.Bind(r, &update); err != nil {
			logger.Warn("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BindError(err))
			return
		}

		if err := handler.UpdateMaintenance(r.Context(), &update); err != nil {
			logger.Error("update maintenance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to update maintenance"))
			return
		}
		logger.Info("maintenance updated")

		render.JSON(w, r, response.Ok("Maintenance updated successfully"))
	}
}

// List returns every maintenance document, an empty array when there are none.
func List(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
		mod := sl.Module("http.handlers.maintenance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		docs, err := handler.Maintenance(r.Context())
		if err != nil {
			logger.Error("get maintenance", sl.Err(err))
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}
		if docs == nil {
			docs = []*entity.Maintenance{}
		}

		render.JSON(w, r, docs)
	}
}
