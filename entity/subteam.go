package entity

import "time"

// Subteam is a directed referral edge: member sits `level` steps below owner
// in the downline (level 1 = direct referral). Written at signup by the public
// application; the admin backend only reads it.
type Subteam struct {
	Owner     string    `json:"owner" bson:"owner"`
	Member    string    `json:"member" bson:"member"`
	Level     int       `json:"level" bson:"level"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// TeamIncome is one commission payout event: owner earned `income` from
// member's activity. Append-only, written by the payout jobs; normal and
// platinum events live in separate collections and are summed together for
// rank volume.
type TeamIncome struct {
	EmailOwner  string    `json:"email_owner" bson:"email_owner"`
	EmailMember string    `json:"email_member" bson:"email_member"`
	Income      string    `json:"income" bson:"income"`
	Plan        Plan      `json:"plan" bson:"plan"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
