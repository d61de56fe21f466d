package entity

import (
	"time"
)

// RewardStatus lifecycle: pending -> processing -> approved | rejected.
// Approved and rejected are terminal for the claim cycle; a later
// eligibility pass may only refresh IsEligible.
type RewardStatus string

const (
	RewardPending    RewardStatus = "pending"
	RewardProcessing RewardStatus = "processing"
	RewardApproved   RewardStatus = "approved"
	RewardRejected   RewardStatus = "rejected"
)

func (s RewardStatus) Terminal() bool {
	return s == RewardApproved || s == RewardRejected
}

// RewardType names the three claimable rank rewards.
type RewardType string

const (
	RewardSilver   RewardType = "silverReward"
	RewardGold     RewardType = "goldReward"
	RewardPlatinum RewardType = "platinumReward"
)

// RankFor maps a reward type to the rank that earns it.
func (t RewardType) RankFor() RankName {
	switch t {
	case RewardSilver:
		return RankSilver
	case RewardGold:
		return RankGold
	case RewardPlatinum:
		return RankPlatinum
	}
	return ""
}

// RewardTypeFor maps a rank to its reward type, "" for Bronze.
func RewardTypeFor(r RankName) RewardType {
	switch r {
	case RankSilver:
		return RewardSilver
	case RankGold:
		return RewardGold
	case RankPlatinum:
		return RewardPlatinum
	}
	return ""
}

// RewardState is one claimable reward within a RewardClaimed document.
type RewardState struct {
	IsEligible   bool         `json:"is_eligible" bson:"is_eligible"`
	IsClaimed    bool         `json:"is_claimed" bson:"is_claimed"`
	RewardAmount string       `json:"reward_amount" bson:"reward_amount"`
	Status       RewardStatus `json:"status" bson:"status"`
	ClaimedDate  *time.Time   `json:"claimed_date,omitempty" bson:"claimed_date,omitempty"`
	ApprovedDate *time.Time   `json:"approved_date,omitempty" bson:"approved_date,omitempty"`
}

// RewardClaimed holds the three reward sub-records for one user.
type RewardClaimed struct {
	Email    string      `json:"email" bson:"email"`
	Silver   RewardState `json:"silver" bson:"silver"`
	Gold     RewardState `json:"gold" bson:"gold"`
	Platinum RewardState `json:"platinum" bson:"platinum"`
}

// State returns the sub-record for a reward type, nil for an unknown type.
func (r *RewardClaimed) State(t RewardType) *RewardState {
	switch t {
	case RewardSilver:
		return &r.Silver
	case RewardGold:
		return &r.Gold
	case RewardPlatinum:
		return &r.Platinum
	}
	return nil
}
