package invest

import (
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"teamvest/entity"
	"teamvest/internal/dashboard"
	"teamvest/internal/database"
	"teamvest/internal/ledger"
	"teamvest/lib/api/response"
	"teamvest/lib/sl"
)

type Core interface {
	CloseInvestment(email string, plan entity.Plan) (*entity.CloseResult, error)
	UpdateWithdrawalStatus(id string, status entity.WithdrawalStatus) (*entity.WithdrawalRequest, error)
}

// Close closes a user's open investment and credits the wallet with the
// deducted principal.
func Close(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.invest"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		data := &entity.CloseRequest{}
		if err := render.Bind(r, data); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
		logger = logger.With(sl.Email(data.Email), slog.String("plan", string(data.Plan)))

		result, err := handler.CloseInvestment(data.Email, data.Plan)
		if err != nil {
			logger.Error("close investment", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Close investment: %v", err)))
			return
		}
		logger.Info("investment closed",
			sl.Amount("credited", result.Credited),
			slog.Int("months_held", result.MonthsHeld),
		)

		render.JSON(w, r, response.Ok(result))
	}
}

// Withdrawal applies a status transition to one withdrawal request.
// Approval debits the lot ledger and credits the wallet.
func Withdrawal(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.invest"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Withdrawal id is required"))
			return
		}
		logger = logger.With(slog.String("withdrawal_id", id))

		data := &entity.WithdrawalAction{}
		if err := render.Bind(r, data); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		req, err := handler.UpdateWithdrawalStatus(id, data.Status)
		if err != nil {
			logger.Error("update withdrawal", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Update withdrawal: %v", err)))
			return
		}
		logger.Info("withdrawal updated", slog.String("status", string(req.Status)))

		render.JSON(w, r, response.Ok(req))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, dashboard.ErrNoWithdrawal),
		errors.Is(err, dashboard.ErrNoActiveInvestment):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientLots):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
