package entity

import "time"

// LegStanding is one direct referral's contribution toward a rank.
// Completed is set when the leg's full-downline volume reached the rank's lag.
type LegStanding struct {
	Email     string `json:"email" bson:"email"`
	Volume    string `json:"volume" bson:"volume"`
	Completed bool   `json:"completed" bson:"completed"`
}

// RankStanding is the per-rank section of a progress snapshot.
type RankStanding struct {
	Rank             RankName      `json:"rank" bson:"rank"`
	Volume           string        `json:"volume" bson:"volume"`
	Percent          float64       `json:"percent" bson:"percent"`
	Achieved         bool          `json:"achieved" bson:"achieved"`
	QualifiedDirects []string      `json:"qualified_directs" bson:"qualified_directs"`
	Legs             []LegStanding `json:"legs" bson:"legs"`
}

// UserProgress is the denormalized rank standing for one user. The evaluator
// recomputes and replaces the whole document on every pass; it is never
// patched field by field.
type UserProgress struct {
	Email        string         `json:"email" bson:"email"`
	Standings    []RankStanding `json:"standings" bson:"standings"`
	CurrentRank  RankName       `json:"current_rank" bson:"current_rank"`
	NextRank     RankName       `json:"next_rank,omitempty" bson:"next_rank,omitempty"`
	TotalVolume  string         `json:"total_volume" bson:"total_volume"`
	VolumeToNext string         `json:"volume_to_next" bson:"volume_to_next"`
	LegsNeeded   int            `json:"legs_needed" bson:"legs_needed"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

// Standing returns the section for a rank, nil if absent.
func (p *UserProgress) Standing(r RankName) *RankStanding {
	for i := range p.Standings {
		if p.Standings[i].Rank == r {
			return &p.Standings[i]
		}
	}
	return nil
}
