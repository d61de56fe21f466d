// Package projection deterministically forecasts future self- and
// team-income events from eligible principal, lot rates and referral depth.
// It is read-only: every number derives from the same lot and eligibility
// primitives the withdrawal path uses.
package projection

import (
	"errors"
	"log/slog"
	"sort"
	"teamvest/entity"
	"teamvest/internal/ledger"
	"teamvest/lib/money"
	"teamvest/lib/sl"
	"time"

	"github.com/shopspring/decimal"
)

// cadenceDays is the payout cadence: one income event every 16 days from
// the investment's income anchor date.
const cadenceDays = 16

// maxTeamLevel is the deepest referral level that still earns commission.
const maxTeamLevel = 11

// normalRateCutoff splits old-rate and new-rate lots for the normal plan.
var normalRateCutoff = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

// teamLevelRates is the commission percentage per referral depth 1..11.
var teamLevelRates = []decimal.Decimal{
	decimal.RequireFromString("1"),
	decimal.RequireFromString("0.375"),
	decimal.RequireFromString("0.325"),
	decimal.RequireFromString("0.25"),
	decimal.RequireFromString("0.2"),
	decimal.RequireFromString("0.125"),
	decimal.RequireFromString("0.075"),
	decimal.RequireFromString("0.05"),
	decimal.RequireFromString("0.035"),
	decimal.RequireFromString("0.035"),
	decimal.RequireFromString("0.03"),
}

func teamRate(level int) decimal.Decimal {
	if level < 1 || level > maxTeamLevel {
		return decimal.Zero
	}
	return teamLevelRates[level-1]
}

// selfRate is a step function of the invested total and the lot's age for
// the normal plan; the platinum plan pays a flat 6%.
func selfRate(plan entity.Plan, total decimal.Decimal, lotAt time.Time) decimal.Decimal {
	if plan == entity.PlanPlatinum {
		return decimal.RequireFromString("6.0")
	}
	small := total.GreaterThanOrEqual(decimal.NewFromInt(50)) &&
		total.LessThanOrEqual(decimal.NewFromInt(2000))
	old := lotAt.Before(normalRateCutoff)
	switch {
	case small && old:
		return decimal.RequireFromString("3.5")
	case small:
		return decimal.RequireFromString("2.75")
	case old:
		return decimal.RequireFromString("4.0")
	default:
		return decimal.RequireFromString("3.25")
	}
}

type Database interface {
	AllOpenInvestments(plan entity.Plan) ([]*entity.Investment, error)
	AllOpenLots(plan entity.Plan) ([]*entity.InvestmentLot, error)
	AllSubteams() ([]entity.Subteam, error)
}

type Engine struct {
	db  Database
	log *slog.Logger
}

func New(db Database, log *slog.Logger) *Engine {
	return &Engine{
		db:  db,
		log: log.With(sl.Module("projection")),
	}
}

// planData is one plan's records bulk-loaded and grouped by email.
type planData struct {
	plan        entity.Plan
	investments map[string]*entity.Investment
	lots        map[string][]*entity.InvestmentLot
}

func (e *Engine) loadPlan(plan entity.Plan) (*planData, error) {
	invs, err := e.db.AllOpenInvestments(plan)
	if err != nil {
		return nil, err
	}
	lots, err := e.db.AllOpenLots(plan)
	if err != nil {
		return nil, err
	}
	data := &planData{
		plan:        plan,
		investments: make(map[string]*entity.Investment, len(invs)),
		lots:        make(map[string][]*entity.InvestmentLot),
	}
	for _, inv := range invs {
		data.investments[inv.Email] = inv
	}
	for _, lot := range lots {
		data.lots[lot.Email] = append(data.lots[lot.Email], lot)
	}
	return data, nil
}

// eligible resolves the eligibility split for one email in one plan.
// Investments without an income anchor are skipped, not misreported.
func (d *planData) eligible(e *Engine, email string) (*entity.Investment, *ledger.EligibleResult) {
	inv, ok := d.investments[email]
	if !ok {
		return nil, nil
	}
	res, err := ledger.Eligible(inv, d.lots[email])
	if err != nil {
		if !errors.Is(err, ledger.ErrMissingIncomeDate) {
			e.log.Warn("eligibility failed", sl.Email(email), sl.Err(err))
		}
		return nil, nil
	}
	if !res.Principal.IsPositive() {
		return nil, nil
	}
	return inv, res
}

// steps yields the payout dates inside [start, end], walking forward from
// the anchor in fixed increments. The anchor itself is the last settled
// payout, so the first projected event is one cadence later.
func steps(anchor, start, end time.Time) []time.Time {
	var out []time.Time
	for d := anchor.AddDate(0, 0, cadenceDays); !d.After(end); d = d.AddDate(0, 0, cadenceDays) {
		if !d.Before(start) {
			out = append(out, d)
		}
	}
	return out
}

// Project materializes the full projection for the parameters, then
// paginates in memory; the computation is bulk-loaded, never N+1.
func (e *Engine) Project(params entity.ProjectionParams) (*entity.ProjectionPage, error) {
	plans := []entity.Plan{entity.PlanNormal, entity.PlanPlatinum}
	if params.PlanType != "" {
		plans = []entity.Plan{params.PlanType}
	}

	data := make([]*planData, 0, len(plans))
	for _, plan := range plans {
		d, err := e.loadPlan(plan)
		if err != nil {
			return nil, err
		}
		data = append(data, d)
	}

	edges, err := e.db.AllSubteams()
	if err != nil {
		return nil, err
	}
	downlines := make(map[string][]entity.Subteam)
	for _, edge := range edges {
		if edge.Level >= 1 && edge.Level <= maxTeamLevel {
			downlines[edge.Owner] = append(downlines[edge.Owner], edge)
		}
	}

	owners := e.selectOwners(params, data, downlines)

	var points []entity.ProjectionPoint
	for _, owner := range owners {
		points = append(points, e.selfPoints(owner, data, params)...)
		points = append(points, e.teamPoints(owner, downlines[owner], data, params)...)
	}

	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		if points[i].Email != points[j].Email {
			return points[i].Email < points[j].Email
		}
		return points[i].Member < points[j].Member
	})

	page := paginate(points, params.Page, params.PerPage)
	page.Summary = summarize(points)
	return page, nil
}

func (e *Engine) selectOwners(params entity.ProjectionParams, data []*planData, downlines map[string][]entity.Subteam) []string {
	if params.Email != "" {
		return []string{params.Email}
	}
	seen := make(map[string]struct{})
	for _, d := range data {
		for email := range d.investments {
			seen[email] = struct{}{}
		}
	}
	for owner := range downlines {
		seen[owner] = struct{}{}
	}
	owners := make([]string, 0, len(seen))
	for email := range seen {
		owners = append(owners, email)
	}
	sort.Strings(owners)
	return owners
}

// selfPoints projects the owner's own investment income: each eligible lot
// earns its rate per payout step.
func (e *Engine) selfPoints(owner string, data []*planData, params entity.ProjectionParams) []entity.ProjectionPoint {
	var points []entity.ProjectionPoint
	for _, d := range data {
		inv, res := d.eligible(e, owner)
		if inv == nil {
			continue
		}
		perStep := decimal.Zero
		for _, lot := range res.EligibleLots {
			rate := selfRate(d.plan, inv.Total(), lot.Timestamp())
			perStep = perStep.Add(money.Percent(lot.Value(), rate))
		}
		if !perStep.IsPositive() {
			continue
		}
		for _, date := range steps(*inv.IncomeDate, params.StartDate, params.EndDate) {
			points = append(points, entity.ProjectionPoint{
				Email:  owner,
				Source: entity.ProjectionSelf,
				Plan:   d.plan,
				Date:   date,
				Amount: money.Format(money.Round2(perStep)),
			})
		}
	}
	return points
}

// teamPoints projects the owner's commission from each downline member's
// eligible principal at the level's fixed rate, on the member's own payout
// cadence.
func (e *Engine) teamPoints(owner string, edges []entity.Subteam, data []*planData, params entity.ProjectionParams) []entity.ProjectionPoint {
	var points []entity.ProjectionPoint
	for _, edge := range edges {
		rate := teamRate(edge.Level)
		if rate.IsZero() {
			continue
		}
		for _, d := range data {
			inv, res := d.eligible(e, edge.Member)
			if inv == nil {
				continue
			}
			perStep := money.Percent(res.Principal, rate)
			if !perStep.IsPositive() {
				continue
			}
			for _, date := range steps(*inv.IncomeDate, params.StartDate, params.EndDate) {
				points = append(points, entity.ProjectionPoint{
					Email:  owner,
					Member: edge.Member,
					Source: entity.ProjectionTeam,
					Plan:   d.plan,
					Level:  edge.Level,
					Date:   date,
					Amount: money.Format(money.Round2(perStep)),
				})
			}
		}
	}
	return points
}

func paginate(points []entity.ProjectionPoint, page, perPage int) *entity.ProjectionPage {
	total := len(points)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return &entity.ProjectionPage{
		Points:  points[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}
}

func summarize(points []entity.ProjectionPoint) entity.ProjectionSummary {
	total := decimal.Zero
	self := decimal.Zero
	team := decimal.Zero
	normal := decimal.Zero
	platinum := decimal.Zero
	users := make(map[string]struct{})

	for _, p := range points {
		amount := money.ParseOrZero(p.Amount)
		total = total.Add(amount)
		if p.Source == entity.ProjectionSelf {
			self = self.Add(amount)
		} else {
			team = team.Add(amount)
		}
		if p.Plan == entity.PlanPlatinum {
			platinum = platinum.Add(amount)
		} else {
			normal = normal.Add(amount)
		}
		users[p.Email] = struct{}{}
	}
	return entity.ProjectionSummary{
		Total:    money.Format(money.Round2(total)),
		Self:     money.Format(money.Round2(self)),
		Team:     money.Format(money.Round2(team)),
		Normal:   money.Format(money.Round2(normal)),
		Platinum: money.Format(money.Round2(platinum)),
		Users:    len(users),
	}
}
