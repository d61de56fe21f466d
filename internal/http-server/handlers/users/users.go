package users

import (
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"teamvest/entity"
	"teamvest/internal/database"
	"teamvest/lib/api/response"
	"teamvest/lib/sl"
)

type Core interface {
	ListUsers(page, perPage int) ([]*entity.User, int, error)
	SetUserActive(email string, active bool) error
	EditUser(email string, edit *entity.UserEdit) (*entity.User, error)
}

type listResponse struct {
	Users   []*entity.User `json:"users"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}

// List returns a page of user records.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.users"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 500 {
			perPage = 50
		}

		list, total, err := handler.ListUsers(page, perPage)
		if err != nil {
			logger.Error("list users", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error(fmt.Sprintf("List users: %v", err)))
			return
		}

		render.JSON(w, r, response.Ok(&listResponse{
			Users:   list,
			Page:    page,
			PerPage: perPage,
			Total:   total,
		}))
	}
}

// SetActive blocks or unblocks a user account; the direction is fixed by the
// route (activate vs deactivate), no body needed.
func SetActive(log *slog.Logger, handler Core, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.users"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		email := chi.URLParam(r, "email")
		if email == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Email is required"))
			return
		}
		logger = logger.With(sl.Email(email))

		if err := handler.SetUserActive(email, active); err != nil {
			logger.Error("set user active", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Set user active: %v", err)))
			return
		}
		logger.Info("user active flag changed", slog.Bool("active", active))

		render.JSON(w, r, response.Ok("Updated"))
	}
}

// Edit updates a user's editable profile fields.
func Edit(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.users"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		email := chi.URLParam(r, "email")
		if email == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Email is required"))
			return
		}
		logger = logger.With(sl.Email(email))

		data := &entity.UserEdit{}
		if err := render.Bind(r, data); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		user, err := handler.EditUser(email, data)
		if err != nil {
			logger.Error("edit user", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Edit user: %v", err)))
			return
		}
		logger.Info("user profile updated")

		render.JSON(w, r, response.Ok(user))
	}
}

func statusFor(err error) int {
	if errors.Is(err, database.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
