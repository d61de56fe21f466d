package entity

import (
	"fmt"
	"net/http"
	"time"
)

// ProjectionSource tags whether a point is the user's own investment income
// or commission from a downline member.
type ProjectionSource string

const (
	ProjectionSelf ProjectionSource = "self"
	ProjectionTeam ProjectionSource = "team"
)

// ProjectionParams selects the projection range and filters.
// PlanType empty means both plans; Email empty means all users.
type ProjectionParams struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	PlanType  Plan      `json:"plan_type,omitempty"`
	Email     string    `json:"email,omitempty"`
	Page      int       `json:"page"`
	PerPage   int       `json:"per_page"`
}

func (p *ProjectionParams) Bind(_ *http.Request) error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("end_date before start_date")
	}
	if p.PlanType != "" && p.PlanType != PlanNormal && p.PlanType != PlanPlatinum {
		return fmt.Errorf("invalid plan_type %q", p.PlanType)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 500 {
		p.PerPage = 50
	}
	return nil
}

// ProjectionPoint is one forecast income event.
// Level is 0 for self income, the referral depth for team income.
type ProjectionPoint struct {
	Email  string           `json:"email"`
	Member string           `json:"member,omitempty"`
	Source ProjectionSource `json:"source"`
	Plan   Plan             `json:"plan"`
	Level  int              `json:"level,omitempty"`
	Date   time.Time        `json:"date"`
	Amount string           `json:"amount"`
}

// ProjectionSummary aggregates a projection run, all values rounded to
// 2 decimal places.
type ProjectionSummary struct {
	Total    string `json:"total"`
	Self     string `json:"self"`
	Team     string `json:"team"`
	Normal   string `json:"normal"`
	Platinum string `json:"platinum"`
	Users    int    `json:"users"`
}

// ProjectionPage is the paginated projection response. Pagination is applied
// to the materialized list after computation.
type ProjectionPage struct {
	Points  []ProjectionPoint `json:"points"`
	Summary ProjectionSummary `json:"summary"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
	Total   int               `json:"total"`
}
