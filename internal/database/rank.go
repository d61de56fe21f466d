package database

import (
	"teamvest/entity"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveUserProgress replaces the whole snapshot; progress documents are never
// patched field by field.
func (m *MongoDB) SaveUserProgress(progress *entity.UserProgress) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUserProgress)
	filter := bson.D{{Key: "email", Value: progress.Email}}
	opts := options.Replace().SetUpsert(true)
	_, err = collection.ReplaceOne(m.ctx, filter, progress, opts)
	return err
}

func (m *MongoDB) AllUserProgress() ([]*entity.UserProgress, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUserProgress)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var rows []*entity.UserProgress
	if err = cursor.All(m.ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *MongoDB) SaveRank(rank *entity.Rank) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRank)
	filter := bson.D{{Key: "email", Value: rank.Email}}
	opts := options.Replace().SetUpsert(true)
	_, err = collection.ReplaceOne(m.ctx, filter, rank, opts)
	return err
}

// RecordLagCompletion writes the first-time fact for (owner, direct, rank).
// $setOnInsert on the unique composite key makes repeat calls no-ops.
func (m *MongoDB) RecordLagCompletion(lc *entity.LagCompletion) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLagCompletion)
	filter := bson.D{
		{Key: "owner", Value: lc.Owner},
		{Key: "direct", Value: lc.Direct},
		{Key: "rank", Value: lc.Rank},
	}
	completedAt := lc.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "owner", Value: lc.Owner},
		{Key: "direct", Value: lc.Direct},
		{Key: "rank", Value: lc.Rank},
		{Key: "completed_at", Value: completedAt},
	}}}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}
