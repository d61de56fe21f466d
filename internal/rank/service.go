// Package rank walks the referral graph, applies the lag-capped rank
// thresholds and records progress snapshots, lag completions and reward
// eligibility.
package rank

import (
	"log/slog"
	"teamvest/entity"
	"teamvest/internal/metrics"
	"teamvest/lib/money"
	"teamvest/lib/sl"
	"time"

	"github.com/shopspring/decimal"
)

// Database is the slice of the store the rank engine needs.
type Database interface {
	AllUserEmails() ([]string, error)
	AllSubteams() ([]entity.Subteam, error)
	TeamIncomes(owner string) ([]entity.TeamIncome, error)
	SaveUserProgress(progress *entity.UserProgress) error
	SaveRank(rank *entity.Rank) error
	RecordLagCompletion(lc *entity.LagCompletion) error
	SetRewardEligibility(email string, t entity.RewardType, eligible bool, amount string) error
}

type Service struct {
	db  Database
	log *slog.Logger
}

func New(db Database, log *slog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With(sl.Module("rank")),
	}
}

// progress is one rank's capped-volume evaluation over sorted legs.
type progress struct {
	volume   decimal.Decimal
	percent  float64
	achieved bool
}

// calcProgress takes the top directsRequired legs (already sorted best
// first) and sums each leg's contribution capped at the rank's lag. A user
// with fewer legs than required fills the missing slots with zero; the full
// headcount always divides the threshold.
func calcProgress(cfg entity.RankConfig, legs []Leg) progress {
	lag := cfg.Lag()
	vol := decimal.Zero
	for i, leg := range legs {
		if i >= cfg.DirectsRequired {
			break
		}
		vol = vol.Add(decimal.Min(leg.Volume, lag))
	}
	pct := vol.Div(cfg.TotalIncome).Mul(decimal.NewFromInt(100)).Round(2)
	return progress{
		volume:   vol,
		percent:  pct.InexactFloat64(),
		achieved: vol.GreaterThanOrEqual(cfg.TotalIncome),
	}
}

// resolveRank returns the highest achieved rank; Bronze is the floor.
func resolveRank(achieved map[entity.RankName]bool) entity.RankName {
	current := entity.RankBronze
	for _, cfg := range entity.Ladder() {
		if achieved[cfg.Name] {
			current = cfg.Name
		}
	}
	return current
}

// ProcessUser recomputes the full rank standing for one email and persists
// the snapshot, rank, lag completions and reward eligibility.
func (s *Service) ProcessUser(email string) (*entity.UserProgress, error) {
	edges, err := s.db.AllSubteams()
	if err != nil {
		return nil, err
	}
	return s.processWithGraph(email, BuildGraph(edges))
}

func (s *Service) processWithGraph(email string, g Graph) (*entity.UserProgress, error) {
	incomeRows, err := s.db.TeamIncomes(email)
	if err != nil {
		return nil, err
	}
	legs := level1Legs(g, indexIncomes(incomeRows), email)

	snapshot := &entity.UserProgress{
		Email:     email,
		UpdatedAt: time.Now().UTC(),
	}
	achieved := make(map[entity.RankName]bool)
	byRank := make(map[entity.RankName]progress)

	for _, cfg := range entity.Ladder() {
		p := calcProgress(cfg, legs)
		achieved[cfg.Name] = p.achieved
		byRank[cfg.Name] = p

		lag := cfg.Lag()
		standing := entity.RankStanding{
			Rank:     cfg.Name,
			Volume:   money.Format(p.volume),
			Percent:  p.percent,
			Achieved: p.achieved,
		}
		for _, leg := range legs {
			completed := leg.Volume.GreaterThanOrEqual(lag)
			standing.Legs = append(standing.Legs, entity.LegStanding{
				Email:     leg.Email,
				Volume:    money.Format(leg.Volume),
				Completed: completed,
			})
			if completed {
				standing.QualifiedDirects = append(standing.QualifiedDirects, leg.Email)
				if err := s.db.RecordLagCompletion(&entity.LagCompletion{
					Owner:  email,
					Direct: leg.Email,
					Rank:   cfg.Name,
				}); err != nil {
					return nil, err
				}
			}
		}
		snapshot.Standings = append(snapshot.Standings, standing)

		rewardType := entity.RewardTypeFor(cfg.Name)
		if err := s.db.SetRewardEligibility(email, rewardType, p.achieved, money.Format(cfg.Reward)); err != nil {
			return nil, err
		}
	}

	current := resolveRank(achieved)
	snapshot.CurrentRank = current
	snapshot.NextRank = entity.NextRank(current)

	total := decimal.Zero
	for _, leg := range legs {
		total = total.Add(leg.Volume)
	}
	snapshot.TotalVolume = money.Format(total)

	if snapshot.NextRank != "" {
		for _, cfg := range entity.Ladder() {
			if cfg.Name != snapshot.NextRank {
				continue
			}
			gap := cfg.TotalIncome.Sub(byRank[cfg.Name].volume)
			if gap.IsNegative() {
				gap = decimal.Zero
			}
			snapshot.VolumeToNext = money.Format(gap)
			needed := cfg.DirectsRequired - len(legs)
			if needed < 0 {
				needed = 0
			}
			snapshot.LegsNeeded = needed
		}
	} else {
		snapshot.VolumeToNext = "0"
	}

	if err := s.db.SaveUserProgress(snapshot); err != nil {
		return nil, err
	}
	if err := s.db.SaveRank(&entity.Rank{
		Email:     email,
		Rank:      current,
		UpdatedAt: snapshot.UpdatedAt,
	}); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// BatchResult summarizes one full pass over all users.
type BatchResult struct {
	Processed int
	Failed    int
	Elapsed   time.Duration
}

// ProcessAllUsers runs the rank pipeline for every distinct email,
// sequentially to bound database load. A failure on one email is logged and
// counted without aborting the rest.
func (s *Service) ProcessAllUsers() (*BatchResult, error) {
	started := time.Now()
	emails, err := s.db.AllUserEmails()
	if err != nil {
		metrics.RankBatchRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	edges, err := s.db.AllSubteams()
	if err != nil {
		metrics.RankBatchRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	g := BuildGraph(edges)

	result := &BatchResult{}
	for _, email := range emails {
		if _, err := s.processWithGraph(email, g); err != nil {
			result.Failed++
			metrics.RankUserFailures.Inc()
			s.log.Error("rank pipeline failed", sl.Email(email), sl.Err(err))
			continue
		}
		result.Processed++
	}
	result.Elapsed = time.Since(started)

	metrics.RankBatchRuns.WithLabelValues("ok").Inc()
	metrics.RankBatchDuration.Observe(result.Elapsed.Seconds())
	s.log.With(
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
		slog.Float64("elapsed", result.Elapsed.Seconds()),
	).Info("rank batch finished")
	return result, nil
}
