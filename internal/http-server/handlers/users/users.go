package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"tgadmin/entity"
	"tgadmin/internal/http-server/middleware/authenticate"
	"tgadmin/lib/api/response"
	"tgadmin/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	Users(ctx context.Context, query entity.UserQuery) (*entity.UserPage, error)
	User(ctx context.Context, userId string) (*entity.UserRow, error)
	UpdateUser(ctx context.Context, userId string, update *entity.UserUpdate) error
	LatestUsers(ctx context.Context) ([]entity.UserRow, error)
}

// List serves a page of users; page defaults to 1, q filters by chat id or username.
func List(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
		mod := sl.Module("http.handlers.users")

		query := entity.UserQuery{
			Page:  pageParam(r.URL.Query().Get("page")),
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Int64("page", query.Page),
			slog.String("query", query.Query),
		)

		page, err := handler.Users(r.Context(), query)
		if err != nil {
			fail(w, r, logger.With(sl.Err(err)), "list users", err)
			return
		}
		logger.Debug("users listed", slog.Int("count", len(page.Users)))

		render.JSON(w, r, page)
	}
}

func Get(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
		mod := sl.Module("http.handlers.users")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("id", id),
		)

		user, err := handler.User(r.Context(), id)
		if err != nil {
			fail(w, r, logger.With(sl.Err(err)), "get user", err)
			return
		}

		render.JSON(w, r, user)
	}
}

func Update(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
		mod := sl.Module("http.handlers.users")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("admin_id", identity.AdminId),
			slog.String("id", id),
		)

		var update entity.UserUpdate
		if err := render.Bind(r, &update); err != nil {
			logger.Warn("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BindError(err))
			return
		}

		if err := handler.UpdateUser(r.Context(), id, &update); err != nil {
			fail(w, r, logger.With(sl.Err(err)), "update user", err)
			return
		}
		logger.Info("user updated")

		render.JSON(w, r, response.Ok("User updated"))
	}
}

func Latest(log *slog.Logger, handler Core) authenticate.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
		mod := sl.Module("http.handlers.users")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		rows, err := handler.LatestUsers(r.Context())
		if err != nil {
			fail(w, r, logger.With(sl.Err(err)), "latest users", err)
			return
		}
		if rows == nil {
			rows = []entity.UserRow{}
		}

		render.JSON(w, r, rows)
	}
}

func pageParam(value string) int64 {
	page, err := strconv.ParseInt(value, 10, 64)
	if err != nil || page < 1 {
		return 1
	}
	return min(page, entity.MaxUsersPage)
}

func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	status, resp := response.FromError(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg)
	} else {
		logger.Debug(msg)
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
