package dashboard

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
	Dashboard(ctx context.Context) (*entity.Dashboard, error)
}

func Stats(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
		mod := sl.Module("http.handlers.dashboard")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		stats, err := handler.Dashboard(r.Context())
		if err != nil {
			logger.Error("get dashboard", sl.Err(err))
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, stats)
	}
}
