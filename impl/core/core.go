// Package core wires the domain services behind the single Handler surface
// the HTTP layer talks to.
package core

import (
	"fmt"
	"log/slog"
	"teamvest/entity"
	"teamvest/internal/dashboard"
	"teamvest/internal/projection"
	"teamvest/internal/rank"
	"teamvest/internal/reward"
	"teamvest/lib/sl"
)

type AuthService interface {
	UserByToken(token string) (*entity.User, error)
}

// Database covers the direct user-administration reads and writes the core
// performs without a dedicated service.
type Database interface {
	GetUser(email string) (*entity.User, error)
	ListUsers(page, perPage int) ([]*entity.User, int, error)
	SetUserActive(email string, active bool) error
	UpdateUserProfile(email string, edit *entity.UserEdit) error
}

type Core struct {
	rank   *rank.Service
	reward *reward.Service
	dash   *dashboard.Service
	proj   *projection.Engine
	auth   AuthService
	db     Database
	log    *slog.Logger
}

func New(rankSvc *rank.Service, rewardSvc *reward.Service, dashSvc *dashboard.Service,
	proj *projection.Engine, db Database, log *slog.Logger) *Core {
	return &Core{
		rank:   rankSvc,
		reward: rewardSvc,
		dash:   dashSvc,
		proj:   proj,
		db:     db,
		log:    log.With(sl.Module("core")),
	}
}

func (c *Core) SetAuthService(auth AuthService) {
	c.auth = auth
}

func (c *Core) AuthenticateByToken(token string) (*entity.User, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.UserByToken(token)
}

func (c *Core) ProcessUser(email string) (*entity.UserProgress, error) {
	return c.rank.ProcessUser(email)
}

func (c *Core) ProcessAllUsers() (*rank.BatchResult, error) {
	return c.rank.ProcessAllUsers()
}

func (c *Core) RewardAction(email string, t entity.RewardType, action reward.Action) (*entity.RewardState, error) {
	return c.reward.Act(email, t, action)
}

func (c *Core) CloseInvestment(email string, plan entity.Plan) (*entity.CloseResult, error) {
	return c.dash.CloseInvestment(email, plan)
}

func (c *Core) UpdateWithdrawalStatus(id string, status entity.WithdrawalStatus) (*entity.WithdrawalRequest, error) {
	return c.dash.UpdateWithdrawalStatus(id, status)
}

func (c *Core) Dashboard(tab dashboard.Tab, filter *dashboard.Filter) (*dashboard.Page, error) {
	return c.dash.Dashboard(tab, filter)
}

func (c *Core) ProjectIncome(params entity.ProjectionParams) (*entity.ProjectionPage, error) {
	return c.proj.Project(params)
}

func (c *Core) ListUsers(page, perPage int) ([]*entity.User, int, error) {
	return c.db.ListUsers(page, perPage)
}

func (c *Core) SetUserActive(email string, active bool) error {
	return c.db.SetUserActive(email, active)
}

// EditUser normalizes the country field before the store write; unknown
// country input is kept verbatim and logged.
func (c *Core) EditUser(email string, edit *entity.UserEdit) (*entity.User, error) {
	if edit.Country != "" {
		probe := entity.User{Country: edit.Country}
		if probe.NormalizeCountry() {
			edit.Country = probe.Country
		} else {
			c.log.Warn("unknown country kept verbatim",
				sl.Email(email), slog.String("country", edit.Country))
		}
	}
	if err := c.db.UpdateUserProfile(email, edit); err != nil {
		return nil, err
	}
	return c.db.GetUser(email)
}
