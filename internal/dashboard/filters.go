package dashboard

import (
	"fmt"
	"net/http"
	"teamvest/entity"
	"time"
)

// Tab selects which slice of the reward/rank data the dashboard shows.
type Tab string

const (
	TabProgress Tab = "progress"
	TabClaimed  Tab = "claimed"
	TabApproved Tab = "approved"
	TabRejected Tab = "rejected"
)

func (t Tab) Valid() bool {
	switch t {
	case TabProgress, TabClaimed, TabApproved, TabRejected:
		return true
	}
	return false
}

// Filter is the typed predicate object for dashboard queries. It is built
// from the request once and evaluated against in-memory joined rows, so the
// filter logic stays testable apart from the store.
type Filter struct {
	Rank       entity.RankName   `json:"rank,omitempty"`
	RewardType entity.RewardType `json:"reward_type,omitempty"`
	From       time.Time         `json:"from,omitempty"`
	To         time.Time         `json:"to,omitempty"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
}

func (f *Filter) Bind(_ *http.Request) error {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 500 {
		f.PerPage = 50
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fmt.Errorf("to before from")
	}
	return nil
}

// inRange checks an optional date bound; a nil date only passes an
// unbounded filter.
func (f *Filter) inRange(t *time.Time) bool {
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	if t == nil {
		return false
	}
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

// Row is one joined dashboard line: reward state plus the user's current
// rank standing.
type Row struct {
	Email        string              `json:"email"`
	CurrentRank  entity.RankName     `json:"current_rank"`
	TotalVolume  string              `json:"total_volume"`
	RewardType   entity.RewardType   `json:"reward_type,omitempty"`
	Status       entity.RewardStatus `json:"status,omitempty"`
	RewardAmount string              `json:"reward_amount,omitempty"`
	ClaimedDate  *time.Time          `json:"claimed_date,omitempty"`
	ApprovedDate *time.Time          `json:"approved_date,omitempty"`
	NextRank     entity.RankName     `json:"next_rank,omitempty"`
	VolumeToNext string              `json:"volume_to_next,omitempty"`
}

// Page is a paginated dashboard response.
type Page struct {
	Rows    []Row `json:"rows"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int   `json:"total"`
}

func (f *Filter) matchRank(rank entity.RankName) bool {
	return f.Rank == "" || f.Rank == rank
}

func (f *Filter) matchRewardType(t entity.RewardType) bool {
	return f.RewardType == "" || f.RewardType == t
}

func paginateRows(rows []Row, page, perPage int) *Page {
	total := len(rows)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return &Page{
		Rows:    rows[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}
}
