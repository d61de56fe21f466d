// Package dashboard is the staff-facing investment operations service:
// closing investments, settling withdrawal requests and the joined
// reward/rank dashboard.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"teamvest/entity"
	"teamvest/internal/database"
	"teamvest/internal/ledger"
	"teamvest/lib/clock"
	"teamvest/lib/money"
	"teamvest/lib/sl"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNoActiveInvestment = errors.New("no active investment")
	ErrAlreadyProcessed   = errors.New("already processed")
	ErrNoWithdrawal       = errors.New("withdrawal request not found")
)

type Database interface {
	GetInvestment(email string, plan entity.Plan) (*entity.Investment, error)
	OpenLots(email string, plan entity.Plan) ([]*entity.InvestmentLot, error)
	ApplyDebit(email string, plan entity.Plan, mutations []entity.LotMutation, newTotal string) error
	CloseInvestment(email string, plan entity.Plan) error
	CreditWallet(email string, amount decimal.Decimal, note string) error
	GetWithdrawal(id string) (*entity.WithdrawalRequest, error)
	SetWithdrawalStatus(id string, from, to entity.WithdrawalStatus) error
	AllRewardClaimed() ([]*entity.RewardClaimed, error)
	AllUserProgress() ([]*entity.UserProgress, error)
}

type Service struct {
	db  Database
	log *slog.Logger
}

func New(db Database, log *slog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With(sl.Module("dashboard")),
	}
}

// closureDeduction is the early-exit penalty in percent. Months are full
// 30-day months, so a position held exactly 180 days already counts as six
// months and gets the milder tier.
func closureDeduction(plan entity.Plan, monthsHeld int) decimal.Decimal {
	switch {
	case monthsHeld < 6:
		return decimal.NewFromInt(20)
	case monthsHeld < 12:
		if plan == entity.PlanPlatinum {
			return decimal.NewFromInt(15)
		}
		return decimal.NewFromInt(10)
	default:
		return decimal.Zero
	}
}

// CloseInvestment settles a user's open investment: principal minus the
// holding-period penalty is credited to the wallet, the investment and all
// its lots are closed.
func (s *Service) CloseInvestment(email string, plan entity.Plan) (*entity.CloseResult, error) {
	inv, err := s.db.GetInvestment(email, plan)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoActiveInvestment
		}
		return nil, err
	}

	months := clock.MonthsHeld(inv.InvestDate, time.Now().UTC())
	deduction := closureDeduction(plan, months)
	kept := decimal.NewFromInt(100).Sub(deduction)
	credited := money.Percent(inv.Total(), kept)

	if err := s.db.CloseInvestment(email, plan); err != nil {
		return nil, err
	}
	if err := s.db.CreditWallet(email, credited, fmt.Sprintf("closure %s", plan)); err != nil {
		return nil, err
	}

	s.log.With(
		sl.Email(email),
		slog.String("plan", string(plan)),
		slog.Int("months_held", months),
		sl.Amount("credited", money.Format(credited)),
	).Info("investment closed")

	return &entity.CloseResult{
		Email:      email,
		Credited:   money.Format(credited),
		MonthsHeld: months,
		Deduction:  money.Format(deduction),
	}, nil
}

// withdrawalDeduction is the time-based early-withdrawal penalty for the
// Basic and Classic products.
func withdrawalDeduction(daysHeld int) decimal.Decimal {
	switch {
	case daysHeld < 180:
		return decimal.NewFromInt(20)
	case daysHeld < 365:
		return decimal.NewFromInt(10)
	default:
		return decimal.Zero
	}
}

// UpdateWithdrawalStatus moves a request to approved, rejected or verified.
// Approval debits the lot ledger oldest first, updates the parent total in
// the same transaction, and credits the wallet with the net amount after the
// time-based deduction. The status change is conditional on the current
// status, so the same decision cannot be applied twice.
func (s *Service) UpdateWithdrawalStatus(id string, status entity.WithdrawalStatus) (*entity.WithdrawalRequest, error) {
	req, err := s.db.GetWithdrawal(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoWithdrawal
		}
		return nil, err
	}
	if req.Status == status {
		return nil, ErrAlreadyProcessed
	}

	if status != entity.WithdrawalApproved {
		if err := s.db.SetWithdrawalStatus(id, req.Status, status); err != nil {
			if errors.Is(err, database.ErrConflict) {
				return nil, ErrAlreadyProcessed
			}
			return nil, err
		}
		return s.db.GetWithdrawal(id)
	}

	plan := req.PlanKind()
	inv, err := s.db.GetInvestment(req.Email, plan)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoActiveInvestment
		}
		return nil, err
	}
	lots, err := s.db.OpenLots(req.Email, plan)
	if err != nil {
		return nil, err
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, err
	}

	debit, err := ledger.PlanDebit(lots, amount)
	if err != nil {
		return nil, err
	}

	// Claim the request first; the conditional update is the lock against
	// a concurrent second approval.
	if err := s.db.SetWithdrawalStatus(id, req.Status, status); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	newTotal := debit.Remaining
	if err := s.db.ApplyDebit(req.Email, plan, debit.Mutations, money.Format(newTotal)); err != nil {
		if revertErr := s.db.SetWithdrawalStatus(id, status, req.Status); revertErr != nil {
			s.log.Error("debit failed and status revert failed, manual reconciliation needed",
				slog.String("id", id), sl.Err(revertErr))
		}
		return nil, err
	}
	s.auditLotSum(req.Email, plan, newTotal)

	net := amount
	if req.DeductionApplies() {
		days := clock.DaysBetween(inv.InvestDate, time.Now().UTC())
		deduction := withdrawalDeduction(days)
		net = money.Percent(amount, decimal.NewFromInt(100).Sub(deduction))
	}
	if err := s.db.CreditWallet(req.Email, net, fmt.Sprintf("withdrawal %s", id)); err != nil {
		return nil, err
	}

	s.log.With(
		sl.Email(req.Email),
		slog.String("id", id),
		sl.Amount("requested", money.Format(amount)),
		sl.Amount("credited", money.Format(net)),
	).Info("withdrawal approved")

	return s.db.GetWithdrawal(id)
}

// auditLotSum is the best-effort integrity guard: after a debit the open
// lots must sum to the parent total. A mismatch is surfaced to operational
// logs, never silently repaired.
func (s *Service) auditLotSum(email string, plan entity.Plan, expected decimal.Decimal) {
	lots, err := s.db.OpenLots(email, plan)
	if err != nil {
		s.log.Warn("lot-sum audit skipped", sl.Email(email), sl.Err(err))
		return
	}
	got := ledger.OpenLotsSum(lots)
	if !got.Equal(expected) {
		s.log.Error("lot-sum mismatch with parent total",
			sl.Email(email),
			slog.String("plan", string(plan)),
			sl.Amount("lots", money.Format(got)),
			sl.Amount("total", money.Format(expected)),
		)
	}
}

// Dashboard joins reward claims with rank standings in memory and slices
// them by tab. The join is bulk-loaded by email, never queried per row.
func (s *Service) Dashboard(tab Tab, filter *Filter) (*Page, error) {
	claims, err := s.db.AllRewardClaimed()
	if err != nil {
		return nil, err
	}
	progress, err := s.db.AllUserProgress()
	if err != nil {
		return nil, err
	}
	progressByEmail := make(map[string]*entity.UserProgress, len(progress))
	for _, p := range progress {
		progressByEmail[p.Email] = p
	}

	var rows []Row
	switch tab {
	case TabProgress:
		for _, p := range progress {
			if !filter.matchRank(p.CurrentRank) {
				continue
			}
			rows = append(rows, Row{
				Email:        p.Email,
				CurrentRank:  p.CurrentRank,
				TotalVolume:  p.TotalVolume,
				NextRank:     p.NextRank,
				VolumeToNext: p.VolumeToNext,
			})
		}
	case TabClaimed, TabApproved, TabRejected:
		want := entity.RewardProcessing
		if tab == TabApproved {
			want = entity.RewardApproved
		} else if tab == TabRejected {
			want = entity.RewardRejected
		}
		for _, claim := range claims {
			for _, t := range []entity.RewardType{entity.RewardSilver, entity.RewardGold, entity.RewardPlatinum} {
				state := claim.State(t)
				if state.Status != want {
					continue
				}
				if tab == TabClaimed && !state.IsClaimed {
					continue
				}
				if !filter.matchRewardType(t) {
					continue
				}
				when := state.ClaimedDate
				if tab != TabClaimed {
					when = state.ApprovedDate
				}
				if !filter.inRange(when) {
					continue
				}
				row := Row{
					Email:        claim.Email,
					RewardType:   t,
					Status:       state.Status,
					RewardAmount: state.RewardAmount,
					ClaimedDate:  state.ClaimedDate,
					ApprovedDate: state.ApprovedDate,
				}
				if p, ok := progressByEmail[claim.Email]; ok {
					row.CurrentRank = p.CurrentRank
					row.TotalVolume = p.TotalVolume
				}
				if !filter.matchRank(row.CurrentRank) {
					continue
				}
				rows = append(rows, row)
			}
		}
	default:
		return nil, fmt.Errorf("unknown dashboard tab %q", tab)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Email < rows[j].Email
	})
	return paginateRows(rows, filter.Page, filter.PerPage), nil
}
