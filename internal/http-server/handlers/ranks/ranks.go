package ranks

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
	"teamvest/internal/rank"
	"teamvest/lib/api/response"
	"teamvest/lib/sl"
	"time"
)

type Core interface {
	ProcessUser(email string) (*entity.UserProgress, error)
	ProcessAllUsers() (*rank.BatchResult, error)
	Dashboard(tab dashboard.Tab, filter *dashboard.Filter) (*dashboard.Page, error)
}

// Process recomputes one user's rank standing and returns the snapshot.
func Process(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.ranks"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		email := chi.URLParam(r, "email")
		if email == "" {
			render.Status(r, 400)
			render.JSON(w, r, response.Error("Email is required"))
			return
		}
		logger = logger.With(sl.Email(email))

		progress, err := handler.ProcessUser(email)
		if err != nil {
			logger.Error("process user", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Process user: %v", err)))
			return
		}
		logger.Debug("user processed")

		render.JSON(w, r, response.Ok(progress))
	}
}

// ProcessAll kicks off a full batch in the background and acknowledges.
func ProcessAll(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.ranks"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		go func() {
			started := time.Now()
			result, err := handler.ProcessAllUsers()
			if err != nil {
				logger.Error("rank batch", sl.Err(err))
				return
			}
			logger.With(
				slog.Int("processed", result.Processed),
				slog.Int("failed", result.Failed),
				slog.Float64("elapsed", time.Since(started).Seconds()),
			).Info("rank batch triggered via api finished")
		}()

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, response.Ok("Rank batch started"))
	}
}

// Dashboard serves the joined reward/rank rows for one tab.
func Dashboard(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.ranks"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter, tab, err := parseQuery(r)
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
		logger = logger.With(slog.String("tab", string(tab)))

		page, err := handler.Dashboard(tab, filter)
		if err != nil {
			logger.Error("dashboard", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Dashboard: %v", err)))
			return
		}
		logger.Debug("dashboard served", slog.Int("rows", len(page.Rows)))

		render.JSON(w, r, response.Ok(page))
	}
}

func statusFor(err error) int {
	if errors.Is(err, database.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func parseQuery(r *http.Request) (*dashboard.Filter, dashboard.Tab, error) {
	q := r.URL.Query()

	tab := dashboard.Tab(q.Get("tab"))
	if tab == "" {
		tab = dashboard.TabProgress
	}
	if !tab.Valid() {
		return nil, tab, fmt.Errorf("unknown tab %q", tab)
	}

	filter := &dashboard.Filter{
		Rank:       entity.RankName(q.Get("rank")),
		RewardType: entity.RewardType(q.Get("reward_type")),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, tab, fmt.Errorf("from: %v", err)
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, tab, fmt.Errorf("to: %v", err)
		}
		filter.To = t
	}
	if v := q.Get("page"); v != "" {
		fmt.Sscanf(v, "%d", &filter.Page)
	}
	if v := q.Get("per_page"); v != "" {
		fmt.Sscanf(v, "%d", &filter.PerPage)
	}
	if err := filter.Bind(r); err != nil {
		return nil, tab, err
	}
	return filter, tab, nil
}
