package projections

import (
	"fmt"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"teamvest/entity"
	"teamvest/lib/api/response"
	"teamvest/lib/sl"
	"time"
)

type Core interface {
	ProjectIncome(params entity.ProjectionParams) (*entity.ProjectionPage, error)
}

// Project forecasts self and team income over a date range. The range and
// filters arrive as query parameters on a GET.
func Project(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.projections"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		params, err := parseQuery(r)
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}
		logger = logger.With(
			slog.Time("start_date", params.StartDate),
			slog.Time("end_date", params.EndDate),
		)
		if params.Email != "" {
			logger = logger.With(sl.Email(params.Email))
		}

		page, err := handler.ProjectIncome(*params)
		if err != nil {
			logger.Error("project income", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Project income: %v", err)))
			return
		}
		logger.Debug("projection served",
			slog.Int("points", page.Total),
			sl.Amount("total", page.Summary.Total),
		)

		render.JSON(w, r, response.Ok(page))
	}
}

func parseQuery(r *http.Request) (*entity.ProjectionParams, error) {
	q := r.URL.Query()

	params := &entity.ProjectionParams{
		PlanType: entity.Plan(q.Get("plan_type")),
		Email:    q.Get("email"),
	}
	var err error
	if v := q.Get("start_date"); v != "" {
		if params.StartDate, err = time.Parse("2006-01-02", v); err != nil {
			return nil, fmt.Errorf("start_date: %v", err)
		}
	}
	if v := q.Get("end_date"); v != "" {
		if params.EndDate, err = time.Parse("2006-01-02", v); err != nil {
			return nil, fmt.Errorf("end_date: %v", err)
		}
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	if err := params.Bind(r); err != nil {
		return nil, err
	}
	return params, nil
}
