package rewards

import (
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"teamvest/entity"
	"teamvest/internal/database"
	"teamvest/internal/reward"
	"teamvest/lib/api/response"
	"teamvest/lib/sl"
)

type Core interface {
	RewardAction(email string, t entity.RewardType, action reward.Action) (*entity.RewardState, error)
}

// Action approves or rejects one claimed reward. All three selectors travel
// in the path: /{email}/{rewardType}/{action}.
func Action(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.rewards"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		email := chi.URLParam(r, "email")
		rewardType := entity.RewardType(chi.URLParam(r, "rewardType"))
		action := reward.Action(chi.URLParam(r, "action"))
		logger = logger.With(
			sl.Email(email),
			slog.String("reward_type", string(rewardType)),
			slog.String("action", string(action)),
		)

		if rewardType.RankFor() == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Unknown reward type: %s", rewardType)))
			return
		}

		state, err := handler.RewardAction(email, rewardType, action)
		if err != nil {
			logger.Error("reward action", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Reward action: %v", err)))
			return
		}
		logger.Info("reward action applied", slog.String("status", string(state.Status)))

		render.JSON(w, r, response.Ok(state))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, reward.ErrNoRewardRecord):
		return http.StatusNotFound
	case errors.Is(err, reward.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, reward.ErrNotEligible), errors.Is(err, reward.ErrUnknownAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
