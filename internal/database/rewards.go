package database

import (
	"fmt"
	"teamvest/entity"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func rewardField(t entity.RewardType) (string, error) {
	switch t {
	case entity.RewardSilver:
		return "silver", nil
	case entity.RewardGold:
		return "gold", nil
	case entity.RewardPlatinum:
		return "platinum", nil
	}
	return "", fmt.Errorf("unknown reward type %q", t)
}

func (m *MongoDB) GetRewardClaimed(email string) (*entity.RewardClaimed, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRewardClaimed)
	var doc entity.RewardClaimed
	err = collection.FindOne(m.ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		return nil, m.findError(err)
	}
	return &doc, nil
}

func (m *MongoDB) AllRewardClaimed() ([]*entity.RewardClaimed, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRewardClaimed)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var rows []*entity.RewardClaimed
	if err = cursor.All(m.ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountPendingClaims counts claimed rewards awaiting an operator decision,
// all three reward types combined.
func (m *MongoDB) CountPendingClaims() (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRewardClaimed)
	open := bson.D{{Key: "$nin", Value: bson.A{entity.RewardApproved, entity.RewardRejected}}}
	var total int64
	for _, field := range []string{"silver", "gold", "platinum"} {
		n, err := collection.CountDocuments(m.ctx, bson.D{
			{field + ".is_claimed", true},
			{field + ".status", open},
		})
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// SetRewardEligibility refreshes the informational eligibility flag without
// touching status or the claim flag. Creates the document on first pass.
func (m *MongoDB) SetRewardEligibility(email string, t entity.RewardType, eligible bool, amount string) error {
	field, err := rewardField(t)
	if err != nil {
		return err
	}
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRewardClaimed)
	filter := bson.D{{Key: "email", Value: email}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{field + ".is_eligible", eligible},
			{field + ".reward_amount", amount},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "email", Value: email},
			{field + ".status", entity.RewardPending},
		}},
	}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

// ApproveReward is a conditional update: the status predicate sits in the
// filter, so two simultaneous operator actions cannot both succeed.
func (m *MongoDB) ApproveReward(email string, t entity.RewardType, approvedAt time.Time) error {
	field, err := rewardField(t)
	if err != nil {
		return err
	}
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRewardClaimed)
	filter := bson.D{
		{Key: "email", Value: email},
		{field + ".is_eligible", true},
		{field + ".is_claimed", true},
		{field + ".status", bson.D{{Key: "$nin", Value: bson.A{entity.RewardApproved, entity.RewardRejected}}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{field + ".status", entity.RewardApproved},
		{field + ".approved_date", approvedAt},
	}}}
	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// RejectReward resets the claim flag so the user may re-claim in a later
// cycle; the approved date is cleared.
func (m *MongoDB) RejectReward(email string, t entity.RewardType) error {
	field, err := rewardField(t)
	if err != nil {
		return err
	}
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRewardClaimed)
	filter := bson.D{
		{Key: "email", Value: email},
		{field + ".is_eligible", true},
		{field + ".is_claimed", true},
		{field + ".status", bson.D{{Key: "$nin", Value: bson.A{entity.RewardApproved, entity.RewardRejected}}}},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{field + ".status", entity.RewardRejected},
			{field + ".is_claimed", false},
		}},
		{Key: "$unset", Value: bson.D{{field + ".approved_date", ""}}},
	}
	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
