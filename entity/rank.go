package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankName is a rung of the reward ladder.
// Hierarchy: Bronze < Silver < Gold < Platinum.
type RankName string

const (
	RankBronze   RankName = "bronze"
	RankSilver   RankName = "silver"
	RankGold     RankName = "gold"
	RankPlatinum RankName = "platinum"
)

// RankConfig is the qualification threshold for a non-Bronze rank.
type RankConfig struct {
	Name            RankName
	TotalIncome     decimal.Decimal
	DirectsRequired int
	Reward          decimal.Decimal
}

// Lag is the volume cap a single leg may contribute toward this rank,
// so one giant leg cannot qualify the rank on its own.
func (c RankConfig) Lag() decimal.Decimal {
	return c.TotalIncome.Div(decimal.NewFromInt(int64(c.DirectsRequired)))
}

// Ladder returns the qualifying ranks in ascending order.
// Bronze is the floor and has no threshold.
func Ladder() []RankConfig {
	return []RankConfig{
		{Name: RankSilver, TotalIncome: decimal.NewFromInt(3500), DirectsRequired: 5, Reward: decimal.NewFromInt(500)},
		{Name: RankGold, TotalIncome: decimal.NewFromInt(10000), DirectsRequired: 8, Reward: decimal.NewFromInt(1250)},
		{Name: RankPlatinum, TotalIncome: decimal.NewFromInt(24000), DirectsRequired: 12, Reward: decimal.NewFromInt(3500)},
	}
}

// NextRank returns the rank immediately above r, or "" at the top.
func NextRank(r RankName) RankName {
	switch r {
	case RankBronze:
		return RankSilver
	case RankSilver:
		return RankGold
	case RankGold:
		return RankPlatinum
	}
	return ""
}

// Rank is the single current-rank document per email, replaced wholesale
// on every evaluator pass.
type Rank struct {
	Email     string    `json:"email" bson:"email"`
	Rank      RankName  `json:"rank" bson:"rank"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// LagCompletion records the first moment a leg crossed the lag threshold for
// a rank. Unique on (owner, direct, rank); written exactly once per triple.
type LagCompletion struct {
	Owner       string    `json:"owner" bson:"owner"`
	Direct      string    `json:"direct" bson:"direct"`
	Rank        RankName  `json:"rank" bson:"rank"`
	CompletedAt time.Time `json:"completed_at" bson:"completed_at"`
}
