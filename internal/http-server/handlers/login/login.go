package login

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"tgadmin/entity"
	"tgadmin/lib/api/response"
	"tgadmin/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	Login(ctx context.Context, credentials entity.Credentials) (*entity.LoginResult, error)
}

type Response struct {
	response.Response
	Token   string `json:"token"`
	AdminId string `json:"admin_id"`
}

// Login checks chat_id/password from the query string and issues a bearer token.
func Login(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.login")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		query := r.URL.Query()
		chatId, err := strconv.ParseInt(query.Get("chat_id"), 10, 64)
		password := query.Get("password")
		if err != nil || password == "" {
			logger.Debug("missing credentials")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing credentials"))
			return
		}
		logger = logger.With(sl.ChatId(chatId))

		result, err := handler.Login(r.Context(), entity.Credentials{ChatId: chatId, Password: password})
		if err != nil {
			status, resp := response.FromError(err)
			if status == http.StatusInternalServerError {
				logger.Error("login", sl.Err(err))
			} else {
				logger.Warn("login failed", sl.Err(err))
			}
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Response: response.Ok(""),
			Token:    result.Token,
			AdminId:  result.AdminId,
		})
	}
}
