// Package reward implements the operator-facing claim approval state
// machine: pending -> processing -> approved | rejected.
package reward

import (
	"errors"
	"fmt"
	"log/slog"
	"teamvest/entity"
	"teamvest/internal/database"
	"teamvest/lib/sl"
	"time"
)

var (
	ErrAlreadyProcessed = errors.New("already processed")
	ErrNotEligible      = errors.New("reward not eligible or not claimed")
	ErrNoRewardRecord   = errors.New("reward record not found")
	ErrUnknownAction    = errors.New("unknown action")
)

// Action is the operator's decision on a claimed reward.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type Database interface {
	GetRewardClaimed(email string) (*entity.RewardClaimed, error)
	ApproveReward(email string, t entity.RewardType, approvedAt time.Time) error
	RejectReward(email string, t entity.RewardType) error
}

type Service struct {
	db  Database
	log *slog.Logger
}

func New(db Database, log *slog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With(sl.Module("reward")),
	}
}

// Act applies an operator decision exactly once. The reward must be eligible
// and claimed and not already settled. The store runs the status predicate
// inside the update filter, so a concurrent second decision loses cleanly.
// The before/after pair is logged for reconciliation; a logging failure
// never rolls the decision back.
func (s *Service) Act(email string, t entity.RewardType, action Action) (*entity.RewardState, error) {
	doc, err := s.db.GetRewardClaimed(email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoRewardRecord
		}
		return nil, err
	}
	before := doc.State(t)
	if before == nil {
		return nil, fmt.Errorf("unknown reward type %q", t)
	}
	if before.Status.Terminal() {
		return nil, ErrAlreadyProcessed
	}
	if !before.IsEligible || !before.IsClaimed {
		return nil, ErrNotEligible
	}

	switch action {
	case ActionApprove:
		err = s.db.ApproveReward(email, t, time.Now().UTC())
	case ActionReject:
		err = s.db.RejectReward(email, t)
	default:
		return nil, ErrUnknownAction
	}
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	after, err := s.db.GetRewardClaimed(email)
	if err != nil {
		return nil, err
	}
	state := after.State(t)

	s.log.With(
		sl.Email(email),
		slog.String("reward", string(t)),
		slog.String("action", string(action)),
		slog.String("before", string(before.Status)),
		slog.String("after", string(state.Status)),
	).Info("reward decision applied")
	return state, nil
}
